package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater/internal/apperrors"
	"theater/internal/database"
	"theater/internal/handlers"
	"theater/internal/models"
)

type denyAll struct{}

func (denyAll) AuthenticateToken(ctx context.Context, token string) (*models.User, error) {
	return nil, apperrors.ErrUnauthorized
}

func (denyAll) AuthenticateBasic(ctx context.Context, email, password string) (*models.User, error) {
	return nil, apperrors.ErrUnauthorized
}

type staticHealth struct{ status string }

func (s staticHealth) HealthCheck(ctx context.Context) database.HealthCheck {
	return database.HealthCheck{Status: s.status}
}

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, &handlers.Handlers{}, denyAll{})

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/users",
		"POST /api/users/token",
		"GET /api/users/me",
		"GET /api/genres",
		"PATCH /api/genres/:id",
		"DELETE /api/actors/:id",
		"PUT /api/theater-halls/:id",
		"GET /api/plays",
		"GET /api/plays/search",
		"POST /api/performances",
		"GET /api/performances/:id/available-tickets",
		"POST /api/reservations",
		"GET /api/reservations/:id",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, &handlers.Handlers{}, denyAll{})

	for _, path := range []string{"/api/plays", "/api/reservations", "/api/performances/1/available-tickets"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status string
		want   int
	}{
		{status: "healthy", want: http.StatusOK},
		{status: "unhealthy", want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", healthCheck(staticHealth{status: tt.status}))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"`+tt.status+`"`)
		})
	}
}
