package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"theater/internal/apperrors"
	"theater/internal/logger"
	"theater/internal/seating"
	"theater/internal/service"
)

type Handlers struct {
	Users        UserService
	Genres       GenreService
	Actors       ActorService
	Halls        HallService
	Plays        PlayService
	Performances PerformanceService
	Reservations ReservationService
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Users:        services.Users,
		Genres:       services.Genres,
		Actors:       services.Actors,
		Halls:        services.Halls,
		Plays:        services.Plays,
		Performances: services.Performances,
		Reservations: services.Reservations,
	}
}

// Ошибки валидации отдаются по json-именам полей
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindJSON разбирает тело запроса и сам отвечает 400 при ошибке
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorBody(err))
		return false
	}
	return true
}

func bindingErrorBody(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body := gin.H{}
		for _, fe := range verrs {
			field := fe.Namespace()
			if i := strings.Index(field, "."); i >= 0 {
				field = field[i+1:]
			}
			msgs, _ := body[field].([]string)
			body[field] = append(msgs, validationMessage(fe))
		}
		return body
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		msg := "Invalid value."
		switch typeErr.Type.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			msg = "A valid integer is required."
		case reflect.String:
			msg = "Not a valid string."
		case reflect.Slice:
			msg = fmt.Sprintf("Expected a list of items but got type %q.", typeErr.Value)
		}
		return gin.H{typeErr.Field: []string{msg}}
	}

	return gin.H{"error": "Invalid request body: " + err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("Ensure this field has at least %s elements.", fe.Param())
		default:
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("Ensure this field has no more than %s elements.", fe.Param())
		default:
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
	default:
		return "Invalid value."
	}
}

// parseID читает :id из пути; при ошибке отвечает 404, как для несуществующего объекта
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}

// handleServiceError переводит ошибки сервисов в HTTP ответы
func handleServiceError(c *gin.Context, err error, action string) {
	var (
		fieldErr    *apperrors.FieldError
		geometryErr *seating.GeometryError
		bookedErr   *apperrors.SeatAlreadyBookedError
	)

	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{fieldErr.Field: []string{fieldErr.Message}})
	case errors.As(err, &geometryErr):
		c.JSON(http.StatusBadRequest, gin.H{geometryErr.Field(): []string{geometryErr.Error()}})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &bookedErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":       "Ticket with this row, seat and performance already exists.",
			"row":         bookedErr.Row,
			"seat":        bookedErr.Seat,
			"performance": bookedErr.PerformanceID,
		})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active account found with the given credentials."})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
	case errors.Is(err, service.ErrSearchUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is temporarily unavailable."})
	default:
		logger.WithContext(c.Request.Context()).Error("Failed to "+action, "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}
