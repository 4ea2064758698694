package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"theater/internal/models"
)

// Genres handlers

// ListGenres - GET /api/genres
func (h *Handlers) ListGenres(c *gin.Context) {
	genres, err := h.Genres.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "list genres")
		return
	}
	c.JSON(http.StatusOK, genres)
}

// GetGenre - GET /api/genres/:id
func (h *Handlers) GetGenre(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	genre, err := h.Genres.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get genre")
		return
	}
	c.JSON(http.StatusOK, genre)
}

// CreateGenre - POST /api/genres
func (h *Handlers) CreateGenre(c *gin.Context) {
	var req models.GenreRequest
	if !bindJSON(c, &req) {
		return
	}

	genre, err := h.Genres.Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "create genre")
		return
	}
	c.JSON(http.StatusCreated, genre)
}

// ReplaceGenre - PUT /api/genres/:id
func (h *Handlers) ReplaceGenre(c *gin.Context) {
	var req models.GenreRequest
	h.updateGenre(c, &req, func() models.GenrePatch { return req.Patch() })
}

// PatchGenre - PATCH /api/genres/:id
func (h *Handlers) PatchGenre(c *gin.Context) {
	var patch models.GenrePatch
	h.updateGenre(c, &patch, func() models.GenrePatch { return patch })
}

func (h *Handlers) updateGenre(c *gin.Context, body interface{}, patch func() models.GenrePatch) {
	id, ok := parseID(c)
	if !ok || !bindJSON(c, body) {
		return
	}

	genre, err := h.Genres.Update(c.Request.Context(), id, patch())
	if err != nil {
		handleServiceError(c, err, "update genre")
		return
	}
	c.JSON(http.StatusOK, genre)
}

// DeleteGenre - DELETE /api/genres/:id
func (h *Handlers) DeleteGenre(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Genres.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "delete genre")
		return
	}
	c.Status(http.StatusNoContent)
}

// Actors handlers

// ListActors - GET /api/actors
// Актеры упорядочены по имени
func (h *Handlers) ListActors(c *gin.Context) {
	actors, err := h.Actors.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "list actors")
		return
	}
	c.JSON(http.StatusOK, actors)
}

// GetActor - GET /api/actors/:id
func (h *Handlers) GetActor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor, err := h.Actors.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get actor")
		return
	}
	c.JSON(http.StatusOK, actor)
}

// CreateActor - POST /api/actors
func (h *Handlers) CreateActor(c *gin.Context) {
	var req models.ActorRequest
	if !bindJSON(c, &req) {
		return
	}

	actor, err := h.Actors.Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "create actor")
		return
	}
	c.JSON(http.StatusCreated, actor)
}

// ReplaceActor - PUT /api/actors/:id
func (h *Handlers) ReplaceActor(c *gin.Context) {
	var req models.ActorRequest
	h.updateActor(c, &req, func() models.ActorPatch { return req.Patch() })
}

// PatchActor - PATCH /api/actors/:id
func (h *Handlers) PatchActor(c *gin.Context) {
	var patch models.ActorPatch
	h.updateActor(c, &patch, func() models.ActorPatch { return patch })
}

func (h *Handlers) updateActor(c *gin.Context, body interface{}, patch func() models.ActorPatch) {
	id, ok := parseID(c)
	if !ok || !bindJSON(c, body) {
		return
	}

	actor, err := h.Actors.Update(c.Request.Context(), id, patch())
	if err != nil {
		handleServiceError(c, err, "update actor")
		return
	}
	c.JSON(http.StatusOK, actor)
}

// DeleteActor - DELETE /api/actors/:id
func (h *Handlers) DeleteActor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Actors.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "delete actor")
		return
	}
	c.Status(http.StatusNoContent)
}

// Theater halls handlers

// ListHalls - GET /api/theater-halls
func (h *Handlers) ListHalls(c *gin.Context) {
	halls, err := h.Halls.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "list theater halls")
		return
	}
	c.JSON(http.StatusOK, halls)
}

// GetHall - GET /api/theater-halls/:id
func (h *Handlers) GetHall(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	hall, err := h.Halls.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get theater hall")
		return
	}
	c.JSON(http.StatusOK, hall)
}

// CreateHall - POST /api/theater-halls
func (h *Handlers) CreateHall(c *gin.Context) {
	var req models.TheaterHallRequest
	if !bindJSON(c, &req) {
		return
	}

	hall, err := h.Halls.Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "create theater hall")
		return
	}
	c.JSON(http.StatusCreated, hall)
}

// ReplaceHall - PUT /api/theater-halls/:id
// Геометрию зала с проданными билетами менять нельзя (409)
func (h *Handlers) ReplaceHall(c *gin.Context) {
	var req models.TheaterHallRequest
	h.updateHall(c, &req, func() models.TheaterHallPatch { return req.Patch() })
}

// PatchHall - PATCH /api/theater-halls/:id
func (h *Handlers) PatchHall(c *gin.Context) {
	var patch models.TheaterHallPatch
	h.updateHall(c, &patch, func() models.TheaterHallPatch { return patch })
}

func (h *Handlers) updateHall(c *gin.Context, body interface{}, patch func() models.TheaterHallPatch) {
	id, ok := parseID(c)
	if !ok || !bindJSON(c, body) {
		return
	}

	hall, err := h.Halls.Update(c.Request.Context(), id, patch())
	if err != nil {
		handleServiceError(c, err, "update theater hall")
		return
	}
	c.JSON(http.StatusOK, hall)
}

// DeleteHall - DELETE /api/theater-halls/:id
func (h *Handlers) DeleteHall(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Halls.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "delete theater hall")
		return
	}
	c.Status(http.StatusNoContent)
}
