package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"theater/internal/auth"
	"theater/internal/cache"
	"theater/internal/config"
	"theater/internal/database"
	"theater/internal/handlers"
	"theater/internal/messaging"
	"theater/internal/metrics"
	"theater/internal/middleware"
	"theater/internal/repository"
	"theater/internal/search"
	"theater/internal/service"
)

// HealthChecker сообщает состояние пула соединений с базой
type HealthChecker interface {
	HealthCheck(ctx context.Context) database.HealthCheck
}

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	es       *search.ElasticsearchClient
	services *service.Services
	repos    *repository.Repositories
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// NewServer создает новый экземпляр сервера. NATS, Valkey и Elasticsearch
// необязательны: при недоступности сервер работает без них.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных, дожидаясь ее готовности
	db, err := database.ConnectAndWait(ctx, cfg.Database, cfg.DBWaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Server{
		config:   cfg,
		db:       db,
		repos:    repository.NewRepositories(db),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.metrics = metrics.NewWithRegistry(s.registry)

	deps := service.Deps{
		Repos:      s.repos,
		Metrics:    s.metrics,
		Tokens:     auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		BcryptCost: cfg.Auth.BcryptCost,
	}

	// Подключаемся к NATS
	if cfg.NATS.Enabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			slog.Warn("NATS unavailable, events will not be published", "error", err)
		} else {
			s.nats = natsClient
			deps.Publisher = natsClient
		}
	}

	// Кеш популярности
	if cfg.Valkey.Enabled {
		valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, popularity cache disabled", "error", err)
		} else {
			s.valkey = valkeyClient
			deps.Cache = valkeyClient
		}
	}

	// Полнотекстовый поиск
	if cfg.Elasticsearch.Enabled {
		esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, search disabled", "error", err)
		} else {
			s.es = esClient
			deps.Search = esClient
		}
	}

	// Создаем сервисы
	s.services = service.NewServices(deps)

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(s.metrics))

	s.router = router

	// Настраиваем роуты
	RegisterRoutes(router, handlers.NewHandlers(s.services), s.services.Users)
	router.GET("/health", healthCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return s, nil
}

// RegisterRoutes настраивает все API роуты
func RegisterRoutes(router *gin.Engine, h *handlers.Handlers, authenticator middleware.Authenticator) {
	api := router.Group("/api")

	// Регистрация и выдача токена доступны без аутентификации
	public := api.Group("/users")
	{
		public.POST("", h.RegisterUser)
		public.POST("/token", h.IssueToken)
	}

	authed := api.Group("", middleware.Authenticate(authenticator))
	{
		authed.GET("/users/me", h.Me)

		// Бронирования доступны любому аутентифицированному пользователю
		reservations := authed.Group("/reservations")
		{
			reservations.GET("", h.ListReservations)
			reservations.POST("", h.CreateReservation)
			reservations.GET("/:id", h.GetReservation)
		}

		// Изменять каталог может только персонал
		catalog := authed.Group("", middleware.RequireAdminForWrites())

		genres := catalog.Group("/genres")
		{
			genres.GET("", h.ListGenres)
			genres.POST("", h.CreateGenre)
			genres.GET("/:id", h.GetGenre)
			genres.PUT("/:id", h.ReplaceGenre)
			genres.PATCH("/:id", h.PatchGenre)
			genres.DELETE("/:id", h.DeleteGenre)
		}

		actors := catalog.Group("/actors")
		{
			actors.GET("", h.ListActors)
			actors.POST("", h.CreateActor)
			actors.GET("/:id", h.GetActor)
			actors.PUT("/:id", h.ReplaceActor)
			actors.PATCH("/:id", h.PatchActor)
			actors.DELETE("/:id", h.DeleteActor)
		}

		halls := catalog.Group("/theater-halls")
		{
			halls.GET("", h.ListHalls)
			halls.POST("", h.CreateHall)
			halls.GET("/:id", h.GetHall)
			halls.PUT("/:id", h.ReplaceHall)
			halls.PATCH("/:id", h.PatchHall)
			halls.DELETE("/:id", h.DeleteHall)
		}

		plays := catalog.Group("/plays")
		{
			plays.GET("", h.ListPlays)
			plays.GET("/search", h.SearchPlays)
			plays.POST("", h.CreatePlay)
			plays.GET("/:id", h.GetPlay)
			plays.PUT("/:id", h.ReplacePlay)
			plays.PATCH("/:id", h.PatchPlay)
			plays.DELETE("/:id", h.DeletePlay)
		}

		performances := catalog.Group("/performances")
		{
			performances.GET("", h.ListPerformances)
			performances.POST("", h.CreatePerformance)
			performances.GET("/:id", h.GetPerformance)
			performances.PUT("/:id", h.ReplacePerformance)
			performances.PATCH("/:id", h.PatchPerformance)
			performances.DELETE("/:id", h.DeletePerformance)
			performances.GET("/:id/available-tickets", h.AvailableTickets)
		}
	}
}

// healthCheck обрабатывает health check запросы
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		check := db.HealthCheck(c.Request.Context())

		status := http.StatusOK
		if !check.Healthy() {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":   check.Status,
			"service":  "theater-api",
			"database": check,
		})
	}
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Services возвращает сервисы для служебных команд
func (s *Server) Services() *service.Services {
	return s.services
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
