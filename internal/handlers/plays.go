package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"theater/internal/models"
	"theater/internal/service"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// ListPlays - GET /api/plays?genres=drama,comedy
// Список спектаклей и самый популярный спектакль недели
func (h *Handlers) ListPlays(c *gin.Context) {
	genres := service.ParseGenreFilter(c.Query("genres"))

	plays, popular, err := h.Plays.List(c.Request.Context(), genres)
	if err != nil {
		handleServiceError(c, err, "list plays")
		return
	}

	results := make([]models.PlayListItem, 0, len(plays))
	for _, p := range plays {
		results = append(results, models.NewPlayListItem(p))
	}

	c.JSON(http.StatusOK, models.PlayListResponse{
		WeekMostPopular: popular,
		Results:         results,
	})
}

// SearchPlays - GET /api/plays/search?query=...&limit=10
// Полнотекстовый поиск через Elasticsearch
func (h *Handlers) SearchPlays(c *gin.Context) {
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchLimit {
			c.JSON(http.StatusBadRequest, gin.H{"limit": []string{"Ensure this value is between 1 and 50."}})
			return
		}
		limit = n
	}

	hits, err := h.Plays.Search(c.Request.Context(), c.Query("query"), limit)
	if err != nil {
		handleServiceError(c, err, "search plays")
		return
	}

	if hits == nil {
		hits = []models.PlaySearchHit{}
	}
	c.JSON(http.StatusOK, hits)
}

// GetPlay - GET /api/plays/:id
func (h *Handlers) GetPlay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	play, err := h.Plays.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get play")
		return
	}
	c.JSON(http.StatusOK, models.NewPlayDetail(*play))
}

// CreatePlay - POST /api/plays
// Жанры передаются по имени, актеры по id
func (h *Handlers) CreatePlay(c *gin.Context) {
	var req models.PlayRequest
	if !bindJSON(c, &req) {
		return
	}

	play, err := h.Plays.Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "create play")
		return
	}
	c.JSON(http.StatusCreated, models.NewPlayDetail(*play))
}

// ReplacePlay - PUT /api/plays/:id
func (h *Handlers) ReplacePlay(c *gin.Context) {
	var req models.PlayRequest
	h.updatePlay(c, &req, func() models.PlayPatch { return req.Patch() })
}

// PatchPlay - PATCH /api/plays/:id
func (h *Handlers) PatchPlay(c *gin.Context) {
	var patch models.PlayPatch
	h.updatePlay(c, &patch, func() models.PlayPatch { return patch })
}

func (h *Handlers) updatePlay(c *gin.Context, body interface{}, patch func() models.PlayPatch) {
	id, ok := parseID(c)
	if !ok || !bindJSON(c, body) {
		return
	}

	play, err := h.Plays.Update(c.Request.Context(), id, patch())
	if err != nil {
		handleServiceError(c, err, "update play")
		return
	}
	c.JSON(http.StatusOK, models.NewPlayDetail(*play))
}

// DeletePlay - DELETE /api/plays/:id
func (h *Handlers) DeletePlay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Plays.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "delete play")
		return
	}
	c.Status(http.StatusNoContent)
}
