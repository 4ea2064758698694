package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"theater/internal/models"
	"theater/internal/seating"
)

const dateLayout = "2006-01-02"

// ListPerformances - GET /api/performances?date=YYYY-MM-DD&play=<id>
func (h *Handlers) ListPerformances(c *gin.Context) {
	var filter models.PerformanceFilter

	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"date": []string{"Enter a valid date."}})
			return
		}
		filter.Date = &date
	}

	if raw := c.Query("play"); raw != "" {
		playID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"play": []string{"Enter a number."}})
			return
		}
		filter.PlayID = &playID
	}

	performances, err := h.Performances.List(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err, "list performances")
		return
	}

	results := make([]models.PerformanceListItem, 0, len(performances))
	for _, p := range performances {
		results = append(results, models.NewPerformanceListItem(p))
	}
	c.JSON(http.StatusOK, results)
}

// GetPerformance - GET /api/performances/:id
func (h *Handlers) GetPerformance(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	performance, err := h.Performances.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get performance")
		return
	}
	c.JSON(http.StatusOK, models.NewPerformanceDetail(*performance))
}

// CreatePerformance - POST /api/performances
func (h *Handlers) CreatePerformance(c *gin.Context) {
	var req models.PerformanceRequest
	if !bindJSON(c, &req) {
		return
	}

	performance, err := h.Performances.Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "create performance")
		return
	}
	c.JSON(http.StatusCreated, models.NewPerformanceListItem(*performance))
}

// ReplacePerformance - PUT /api/performances/:id
func (h *Handlers) ReplacePerformance(c *gin.Context) {
	var req models.PerformanceRequest
	h.updatePerformance(c, &req, func() models.PerformancePatch { return req.Patch() })
}

// PatchPerformance - PATCH /api/performances/:id
func (h *Handlers) PatchPerformance(c *gin.Context) {
	var patch models.PerformancePatch
	h.updatePerformance(c, &patch, func() models.PerformancePatch { return patch })
}

func (h *Handlers) updatePerformance(c *gin.Context, body interface{}, patch func() models.PerformancePatch) {
	id, ok := parseID(c)
	if !ok || !bindJSON(c, body) {
		return
	}

	performance, err := h.Performances.Update(c.Request.Context(), id, patch())
	if err != nil {
		handleServiceError(c, err, "update performance")
		return
	}
	c.JSON(http.StatusOK, models.NewPerformanceListItem(*performance))
}

// DeletePerformance - DELETE /api/performances/:id
func (h *Handlers) DeletePerformance(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Performances.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "delete performance")
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableTickets - GET /api/performances/:id/available-tickets?row=<int>
// Свободные места считаются в момент запроса, без кеша
func (h *Handlers) AvailableTickets(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var row *int
	// Пустой ?row= означает отсутствие фильтра
	if raw := c.Query("row"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Row must be an integer."})
			return
		}
		row = &n
	}

	seats, err := h.Performances.AvailableTickets(c.Request.Context(), id, row)
	if err != nil {
		var geometryErr *seating.GeometryError
		if errors.As(err, &geometryErr) && geometryErr.Kind == seating.RowOutOfRange {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Row must be in range 1 to %d.", geometryErr.Max)})
			return
		}
		handleServiceError(c, err, "list available tickets")
		return
	}

	if seats == nil {
		seats = []models.SeatAddress{}
	}
	c.JSON(http.StatusOK, seats)
}
