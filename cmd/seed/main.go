package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"theater/internal/apperrors"
	"theater/internal/auth"
	"theater/internal/config"
	"theater/internal/database"
	"theater/internal/logger"
	"theater/internal/messaging"
	"theater/internal/models"
	"theater/internal/repository"
	"theater/internal/service"
)

var (
	staffEmail    = flag.String("staff-email", "admin@theater.local", "Email of the staff account to create")
	staffPassword = flag.String("staff-password", "admin", "Password of the staff account")
	withDemo      = flag.Bool("demo", false, "Generate a demo catalog, schedule and reservations")
	seed          = flag.Int64("seed", time.Now().UnixNano(), "Random seed for demo data")
	dryRun        = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

type Seeder struct {
	services *service.Services
	log      *slog.Logger
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting seeder...")

	plan := buildDemoPlan(rand.New(rand.NewSource(*seed)), time.Now().UTC())
	if *dryRun {
		log.Info("[DRY RUN] Would create staff user", "email", *staffEmail)
		if *withDemo {
			log.Info("[DRY RUN] Would generate demo data",
				"genres", len(plan.Genres),
				"actors", len(plan.Actors),
				"halls", len(plan.Halls),
				"plays", len(plan.Plays),
				"performances", len(plan.Performances),
				"reservations", len(plan.Reservations))
		}
		return
	}

	ctx := context.Background()
	db, err := database.ConnectAndWait(ctx, cfg.Database, cfg.DBWaitTimeout)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	deps := service.Deps{
		Repos:      repository.NewRepositories(db),
		Tokens:     auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		BcryptCost: cfg.Auth.BcryptCost,
	}

	// События нужны, чтобы consumers проиндексировали демо-спектакли
	if cfg.NATS.Enabled {
		cfg.NATS.ClientID = "theater-seed"
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			log.Warn("NATS unavailable, seeded plays will not be indexed", "error", err)
		} else {
			defer natsClient.Close()
			deps.Publisher = natsClient
		}
	}

	seeder := &Seeder{services: service.NewServices(deps), log: log}

	if err := seeder.ensureStaff(ctx, *staffEmail, *staffPassword); err != nil {
		logger.Fatal("Failed to create staff user", "error", err)
	}

	if *withDemo {
		if err := seeder.generateDemo(ctx, plan); err != nil {
			logger.Fatal("Failed to generate demo data", "error", err)
		}
	}

	log.Info("Seeding completed successfully!")
}

func (s *Seeder) ensureStaff(ctx context.Context, email, password string) error {
	user, err := s.services.Users.CreateStaff(ctx, email, password)
	var fieldErr *apperrors.FieldError
	if errors.As(err, &fieldErr) && fieldErr.Field == "email" {
		s.log.Info("Staff user already exists, skipping", "email", email)
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info("Created staff user", "id", user.ID, "email", user.Email)
	return nil
}

func (s *Seeder) generateDemo(ctx context.Context, plan DemoPlan) error {
	existing, _, err := s.services.Plays.List(ctx, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.log.Info("Catalog already has plays, skipping demo data", "plays", len(existing))
		return nil
	}

	for _, name := range plan.Genres {
		if _, err := s.services.Genres.Create(ctx, models.GenreRequest{Name: name}); err != nil {
			return fmt.Errorf("failed to create genre %q: %w", name, err)
		}
	}

	actorIDs := make([]int64, 0, len(plan.Actors))
	for _, a := range plan.Actors {
		actor, err := s.services.Actors.Create(ctx, a)
		if err != nil {
			return fmt.Errorf("failed to create actor: %w", err)
		}
		actorIDs = append(actorIDs, actor.ID)
	}

	hallIDs := make([]int64, 0, len(plan.Halls))
	for _, h := range plan.Halls {
		hall, err := s.services.Halls.Create(ctx, h)
		if err != nil {
			return fmt.Errorf("failed to create hall %q: %w", h.Name, err)
		}
		hallIDs = append(hallIDs, hall.ID)
	}

	playIDs := make([]int64, 0, len(plan.Plays))
	for _, p := range plan.Plays {
		req := models.PlayRequest{
			Title:       p.Title,
			Description: p.Description,
			Genres:      p.Genres,
			Actors:      pick(actorIDs, p.ActorIdx),
		}
		play, err := s.services.Plays.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create play %q: %w", p.Title, err)
		}
		playIDs = append(playIDs, play.ID)
	}

	performanceIDs := make([]int64, 0, len(plan.Performances))
	for _, pf := range plan.Performances {
		performance, err := s.services.Performances.Create(ctx, models.PerformanceRequest{
			Play:        playIDs[pf.PlayIdx],
			TheaterHall: hallIDs[pf.HallIdx],
			ShowTime:    pf.ShowTime,
		})
		if err != nil {
			return fmt.Errorf("failed to create performance: %w", err)
		}
		performanceIDs = append(performanceIDs, performance.ID)
	}

	visitor, err := s.services.Users.Register(ctx, models.RegisterUserRequest{
		Email:    "visitor@theater.local",
		Password: "visitor",
	})
	if err != nil {
		return fmt.Errorf("failed to create demo visitor: %w", err)
	}

	booked := 0
	for _, r := range plan.Reservations {
		tickets := make([]models.TicketInput, 0, len(r.Seats))
		for _, seat := range r.Seats {
			tickets = append(tickets, models.TicketInput{
				Row:           seat.Row,
				Seat:          seat.Seat,
				PerformanceID: performanceIDs[r.PerformanceIdx],
			})
		}

		_, err := s.services.Reservations.Create(ctx, *visitor, tickets)
		var conflict *apperrors.SeatAlreadyBookedError
		if errors.As(err, &conflict) {
			s.log.Debug("Demo seat already taken, skipping", "row", conflict.Row, "seat", conflict.Seat)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create demo reservation: %w", err)
		}
		booked += len(tickets)
	}

	s.log.Info("Generated demo data",
		"plays", len(playIDs),
		"performances", len(performanceIDs),
		"tickets", booked)
	return nil
}

func pick(ids []int64, idx []int) []int64 {
	out := make([]int64, 0, len(idx))
	for _, i := range idx {
		out = append(out, ids[i])
	}
	return out
}
