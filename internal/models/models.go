package models

import "time"

// ShowTimeLayout is the format of show_time inside ticket responses
const ShowTimeLayout = "2006-01-02 15:04"

// Users

type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=128"`
}

type TokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, IsStaff: u.IsStaff}
}

// Genres

type GenreRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type GenrePatch struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=255"`
}

func (r GenreRequest) Patch() GenrePatch {
	return GenrePatch{Name: &r.Name}
}

// Actors

type ActorRequest struct {
	FirstName string `json:"first_name" binding:"required,max=255"`
	LastName  string `json:"last_name" binding:"required,max=255"`
}

type ActorPatch struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=255"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=255"`
}

func (r ActorRequest) Patch() ActorPatch {
	return ActorPatch{FirstName: &r.FirstName, LastName: &r.LastName}
}

// Theater halls

// Upper bounds of hall geometry; the binding tags and the theater_halls
// CHECK constraints carry the same numbers.
const (
	MaxHallRows   = 1000
	MaxSeatsInRow = 1000
)

type TheaterHallRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	Rows       int    `json:"rows" binding:"required,min=1,max=1000"`
	SeatsInRow int    `json:"seats_in_row" binding:"required,min=1,max=1000"`
}

type TheaterHallPatch struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=255"`
	Rows       *int    `json:"rows" binding:"omitempty,min=1,max=1000"`
	SeatsInRow *int    `json:"seats_in_row" binding:"omitempty,min=1,max=1000"`
}

func (r TheaterHallRequest) Patch() TheaterHallPatch {
	return TheaterHallPatch{Name: &r.Name, Rows: &r.Rows, SeatsInRow: &r.SeatsInRow}
}

// Plays

// PlayRequest references genres by name and actors by id
type PlayRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Genres      []string `json:"genres" binding:"dive,required"`
	Actors      []int64  `json:"actors" binding:"dive,min=1"`
}

// PlayPatch treats nil slices as "unchanged" and empty slices as "clear"
type PlayPatch struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	Genres      []string `json:"genres" binding:"omitempty,dive,required"`
	Actors      []int64  `json:"actors" binding:"omitempty,dive,min=1"`
}

func (r PlayRequest) Patch() PlayPatch {
	genres := r.Genres
	if genres == nil {
		genres = []string{}
	}
	actors := r.Actors
	if actors == nil {
		actors = []int64{}
	}
	return PlayPatch{Title: &r.Title, Description: &r.Description, Genres: genres, Actors: actors}
}

type PlayListItem struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	GenreList   []string `json:"genre_list"`
	ActorList   []string `json:"actor_list"`
}

type PlayDetail struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Genres      []Genre `json:"genres"`
	Actors      []Actor `json:"actors"`
}

type PlayListResponse struct {
	WeekMostPopular *PlayRef       `json:"week_most_popular"`
	Results         []PlayListItem `json:"results"`
}

// PlaySearchHit is a single full-text search match
type PlaySearchHit struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
	Score       float64  `json:"score"`
}

func NewPlayListItem(p Play) PlayListItem {
	return PlayListItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		GenreList:   p.GenreNames(),
		ActorList:   p.ActorNames(),
	}
}

func NewPlayDetail(p Play) PlayDetail {
	genres := p.Genres
	if genres == nil {
		genres = []Genre{}
	}
	actors := p.Actors
	if actors == nil {
		actors = []Actor{}
	}
	return PlayDetail{ID: p.ID, Title: p.Title, Description: p.Description, Genres: genres, Actors: actors}
}

// Performances

type PerformanceRequest struct {
	Play        int64     `json:"play" binding:"required,min=1"`
	TheaterHall int64     `json:"theater_hall" binding:"required,min=1"`
	ShowTime    time.Time `json:"show_time" binding:"required"`
}

type PerformancePatch struct {
	Play        *int64     `json:"play" binding:"omitempty,min=1"`
	TheaterHall *int64     `json:"theater_hall" binding:"omitempty,min=1"`
	ShowTime    *time.Time `json:"show_time"`
}

func (r PerformanceRequest) Patch() PerformancePatch {
	return PerformancePatch{Play: &r.Play, TheaterHall: &r.TheaterHall, ShowTime: &r.ShowTime}
}

// PerformanceFilter narrows the performance list. Date matches the calendar
// day of show_time.
type PerformanceFilter struct {
	Date   *time.Time
	PlayID *int64
}

type PerformanceListItem struct {
	ID          int64     `json:"id"`
	Play        string    `json:"play"`
	TheaterHall string    `json:"theater_hall"`
	ShowTime    time.Time `json:"show_time"`
}

type PerformanceDetail struct {
	ID          int64       `json:"id"`
	Play        PlayDetail  `json:"play"`
	TheaterHall TheaterHall `json:"theater_hall"`
	ShowTime    time.Time   `json:"show_time"`
}

func NewPerformanceListItem(p Performance) PerformanceListItem {
	item := PerformanceListItem{ID: p.ID, ShowTime: p.ShowTime}
	if p.Play != nil {
		item.Play = p.Play.Title
	}
	if p.TheaterHall != nil {
		item.TheaterHall = p.TheaterHall.Name
	}
	return item
}

func NewPerformanceDetail(p Performance) PerformanceDetail {
	detail := PerformanceDetail{ID: p.ID, ShowTime: p.ShowTime}
	if p.Play != nil {
		detail.Play = NewPlayDetail(*p.Play)
	}
	if p.TheaterHall != nil {
		detail.TheaterHall = *p.TheaterHall
	}
	return detail
}

// Reservations

type TicketRequest struct {
	Row         *int   `json:"row" binding:"required"`
	Seat        *int   `json:"seat" binding:"required"`
	Performance *int64 `json:"performance" binding:"required"`
}

type CreateReservationRequest struct {
	Tickets []TicketRequest `json:"tickets" binding:"dive"`
}

// TicketInput is a validated-shape ticket ready for the reservation service
type TicketInput struct {
	Row           int
	Seat          int
	PerformanceID int64
}

func (r CreateReservationRequest) TicketInputs() []TicketInput {
	inputs := make([]TicketInput, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		var in TicketInput
		if t.Row != nil {
			in.Row = *t.Row
		}
		if t.Seat != nil {
			in.Seat = *t.Seat
		}
		if t.Performance != nil {
			in.PerformanceID = *t.Performance
		}
		inputs = append(inputs, in)
	}
	return inputs
}

type TicketResponse struct {
	Row      int    `json:"row"`
	Seat     int    `json:"seat"`
	Play     string `json:"play"`
	Hall     string `json:"hall"`
	ShowTime string `json:"show_time"`
}

type ReservationResponse struct {
	ID        int64            `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	User      string           `json:"user"`
	Tickets   []TicketResponse `json:"tickets"`
}

func NewTicketResponse(t Ticket) TicketResponse {
	resp := TicketResponse{Row: t.Row, Seat: t.Seat}
	if p := t.Performance; p != nil {
		resp.ShowTime = p.ShowTime.Format(ShowTimeLayout)
		if p.Play != nil {
			resp.Play = p.Play.Title
		}
		if p.TheaterHall != nil {
			resp.Hall = p.TheaterHall.Name
		}
	}
	return resp
}

func NewReservationResponse(r Reservation) ReservationResponse {
	tickets := make([]TicketResponse, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		tickets = append(tickets, NewTicketResponse(t))
	}
	return ReservationResponse{ID: r.ID, CreatedAt: r.CreatedAt, User: r.UserEmail, Tickets: tickets}
}
