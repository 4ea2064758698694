package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"theater/internal/middleware"
	"theater/internal/models"
)

// RegisterUser - POST /api/users
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req models.RegisterUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, models.NewUserResponse(*user))
}

// IssueToken - POST /api/users/token
// Обменять email и пароль на JWT
func (h *Handlers) IssueToken(c *gin.Context) {
	var req models.TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.Users.IssueToken(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusOK, token)
}

// Me - GET /api/users/me
func (h *Handlers) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}
