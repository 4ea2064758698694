// Command validate runs the end-to-end booking scenario against a running API.
//
//	go run ./scripts -url http://localhost:8081 -email admin@theater.local -password admin
package main

import (
	"flag"
	"os"
	"time"

	"theater/internal/logger"
	"theater/internal/validation"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8081", "Base URL for API validation")
	email := flag.String("email", "admin@theater.local", "Staff account email")
	password := flag.String("password", "admin", "Staff account password")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logger.Init(*logLevel, "text")
	log := logger.Get()

	started := time.Now()
	log.Info("Starting API validation", "url", *baseURL, "email", *email)

	if err := validation.NewAPIValidator(*baseURL, *email, *password).ValidateAll(); err != nil {
		log.Error("Валидация не пройдена", "error", err, "elapsed", time.Since(started))
		os.Exit(1)
	}

	log.Info("Валидация успешно пройдена", "elapsed", time.Since(started))
}
