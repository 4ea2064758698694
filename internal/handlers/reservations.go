package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"theater/internal/middleware"
	"theater/internal/models"
)

// CreateReservation - POST /api/reservations
// Все билеты бронируются в одной транзакции; занятое место дает 409
func (h *Handlers) CreateReservation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return
	}

	var req models.CreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	reservation, err := h.Reservations.Create(c.Request.Context(), user, req.TicketInputs())
	if err != nil {
		handleServiceError(c, err, "create reservation")
		return
	}

	c.JSON(http.StatusCreated, models.NewReservationResponse(*reservation))
}

// ListReservations - GET /api/reservations
// Бронирования текущего пользователя, новые первыми
func (h *Handlers) ListReservations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return
	}

	reservations, err := h.Reservations.List(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err, "list reservations")
		return
	}

	response := make([]models.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		response = append(response, models.NewReservationResponse(r))
	}
	c.JSON(http.StatusOK, response)
}

// GetReservation - GET /api/reservations/:id
// Чужие бронирования отдаются как 404
func (h *Handlers) GetReservation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	reservation, err := h.Reservations.Get(c.Request.Context(), user, id)
	if err != nil {
		handleServiceError(c, err, "get reservation")
		return
	}
	c.JSON(http.StatusOK, models.NewReservationResponse(*reservation))
}
