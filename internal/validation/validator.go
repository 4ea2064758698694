package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"theater/internal/models"
)

// APIValidator прогоняет сквозной сценарий против запущенного API:
// каталог, расписание, бронирование и конфликт за одно и то же место
type APIValidator struct {
	baseURL  string
	email    string
	password string
	token    string
	client   *http.Client
}

// NewAPIValidator создает новый валидатор; учетная запись должна принадлежать персоналу
func NewAPIValidator(baseURL, email, password string) *APIValidator {
	return &APIValidator{
		baseURL:  baseURL,
		email:    email,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type fixture struct {
	genreID       int64
	actorID       int64
	hallID        int64
	playID        int64
	performanceID int64
}

// ValidateAll проверяет основные endpoints и удаляет созданные данные
func (v *APIValidator) ValidateAll() error {
	slog.Info("Начинаю валидацию API...", "url", v.baseURL)

	if err := v.expectStatus(http.MethodGet, "/health", nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("health validation failed: %w", err)
	}

	if err := v.authenticate(); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fx := &fixture{}
	defer v.cleanup(fx)

	if err := v.createCatalog(fx); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	if err := v.validatePlays(); err != nil {
		return fmt.Errorf("plays validation failed: %w", err)
	}

	if err := v.validateReservations(fx); err != nil {
		return fmt.Errorf("reservations validation failed: %w", err)
	}

	slog.Info("Все endpoints прошли валидацию успешно")
	return nil
}

func (v *APIValidator) authenticate() error {
	var token models.TokenResponse
	body := models.TokenRequest{Email: v.email, Password: v.password}
	if err := v.expectStatus(http.MethodPost, "/api/users/token", body, http.StatusOK, &token); err != nil {
		return err
	}
	if token.Access == "" {
		return fmt.Errorf("POST /api/users/token: empty access token")
	}
	v.token = token.Access
	return nil
}

func (v *APIValidator) createCatalog(fx *fixture) error {
	slog.Info("Проверяю catalog endpoints...")
	suffix := time.Now().Format("150405.000")

	var genre models.Genre
	if err := v.expectStatus(http.MethodPost, "/api/genres", models.GenreRequest{Name: "validation-" + suffix}, http.StatusCreated, &genre); err != nil {
		return err
	}
	fx.genreID = genre.ID

	var actor models.Actor
	if err := v.expectStatus(http.MethodPost, "/api/actors", models.ActorRequest{FirstName: "Val", LastName: suffix}, http.StatusCreated, &actor); err != nil {
		return err
	}
	fx.actorID = actor.ID

	var hall models.TheaterHall
	hallReq := models.TheaterHallRequest{Name: "validation-" + suffix, Rows: 2, SeatsInRow: 2}
	if err := v.expectStatus(http.MethodPost, "/api/theater-halls", hallReq, http.StatusCreated, &hall); err != nil {
		return err
	}
	fx.hallID = hall.ID

	var play models.PlayDetail
	playReq := models.PlayRequest{Title: "Validation " + suffix, Genres: []string{genre.Name}, Actors: []int64{actor.ID}}
	if err := v.expectStatus(http.MethodPost, "/api/plays", playReq, http.StatusCreated, &play); err != nil {
		return err
	}
	fx.playID = play.ID

	var performance models.PerformanceListItem
	pfReq := models.PerformanceRequest{Play: play.ID, TheaterHall: hall.ID, ShowTime: time.Now().Add(-time.Hour).UTC()}
	if err := v.expectStatus(http.MethodPost, "/api/performances", pfReq, http.StatusCreated, &performance); err != nil {
		return err
	}
	fx.performanceID = performance.ID

	slog.Info("Catalog endpoints валидны")
	return nil
}

func (v *APIValidator) validatePlays() error {
	slog.Info("Проверяю Plays endpoints...")

	var list models.PlayListResponse
	if err := v.expectStatus(http.MethodGet, "/api/plays", nil, http.StatusOK, &list); err != nil {
		return err
	}
	if list.Results == nil {
		return fmt.Errorf("GET /api/plays: missing results")
	}

	slog.Info("Plays endpoints валидны", "plays", len(list.Results))
	return nil
}

func (v *APIValidator) validateReservations(fx *fixture) error {
	slog.Info("Проверяю Reservations endpoints...")
	availablePath := fmt.Sprintf("/api/performances/%d/available-tickets", fx.performanceID)

	var seats []models.SeatAddress
	if err := v.expectStatus(http.MethodGet, availablePath, nil, http.StatusOK, &seats); err != nil {
		return err
	}
	if len(seats) != 4 {
		return fmt.Errorf("GET %s: expected 4 seats, got %d", availablePath, len(seats))
	}

	if err := v.expectStatus(http.MethodGet, availablePath+"?row=3", nil, http.StatusBadRequest, nil); err != nil {
		return err
	}

	one := reservationBody(1, 1, fx.performanceID)
	var created models.ReservationResponse
	if err := v.expectStatus(http.MethodPost, "/api/reservations", one, http.StatusCreated, &created); err != nil {
		return err
	}
	if len(created.Tickets) != 1 {
		return fmt.Errorf("POST /api/reservations: expected 1 ticket, got %d", len(created.Tickets))
	}

	// Второе бронирование того же места
	if err := v.expectStatus(http.MethodPost, "/api/reservations", one, http.StatusConflict, nil); err != nil {
		return err
	}

	if err := v.expectStatus(http.MethodPost, "/api/reservations", reservationBody(3, 1, fx.performanceID), http.StatusBadRequest, nil); err != nil {
		return err
	}

	if err := v.expectStatus(http.MethodGet, availablePath, nil, http.StatusOK, &seats); err != nil {
		return err
	}
	if len(seats) != 3 {
		return fmt.Errorf("GET %s: expected 3 seats after booking, got %d", availablePath, len(seats))
	}

	if err := v.expectStatus(http.MethodGet, fmt.Sprintf("/api/reservations/%d", created.ID), nil, http.StatusOK, nil); err != nil {
		return err
	}

	slog.Info("Reservations endpoints валидны")
	return nil
}

func reservationBody(row, seat int, performanceID int64) models.CreateReservationRequest {
	return models.CreateReservationRequest{Tickets: []models.TicketRequest{{Row: &row, Seat: &seat, Performance: &performanceID}}}
}

// cleanup удаляет созданные данные; билеты удаляются каскадно вместе с сеансом
func (v *APIValidator) cleanup(fx *fixture) {
	steps := []struct {
		path string
		id   int64
	}{
		{"/api/performances/%d", fx.performanceID},
		{"/api/plays/%d", fx.playID},
		{"/api/theater-halls/%d", fx.hallID},
		{"/api/actors/%d", fx.actorID},
		{"/api/genres/%d", fx.genreID},
	}
	for _, step := range steps {
		if step.id == 0 {
			continue
		}
		path := fmt.Sprintf(step.path, step.id)
		if err := v.expectStatus(http.MethodDelete, path, nil, http.StatusNoContent, nil); err != nil {
			slog.Warn("Failed to clean up validation data", "path", path, "error", err)
		}
	}
}

// expectStatus выполняет запрос, сверяет статус и при необходимости декодирует тело
func (v *APIValidator) expectStatus(method, path string, body interface{}, want int, out interface{}) error {
	resp, err := v.makeRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: expected %d, got %d: %s", method, path, want, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}

func (v *APIValidator) makeRequest(method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, v.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}

// RunValidation запускает валидацию API. Адрес и учетные данные берутся из
// VALIDATE_URL, VALIDATE_EMAIL и VALIDATE_PASSWORD.
func RunValidation() {
	validator := NewAPIValidator(
		getEnv("VALIDATE_URL", "http://localhost:8081"),
		getEnv("VALIDATE_EMAIL", "admin@theater.local"),
		getEnv("VALIDATE_PASSWORD", "admin"),
	)
	if err := validator.ValidateAll(); err != nil {
		slog.Error("Валидация не пройдена", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
