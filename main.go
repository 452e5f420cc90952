package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devtrail/devtrail-be/internal/api"
	"github.com/devtrail/devtrail-be/internal/auth"
	"github.com/devtrail/devtrail-be/internal/config"
	"github.com/devtrail/devtrail-be/internal/database"
	"github.com/devtrail/devtrail-be/internal/geocoder"
	"github.com/devtrail/devtrail-be/internal/logger"
	"github.com/devtrail/devtrail-be/internal/monitoring"
	"github.com/devtrail/devtrail-be/internal/services"
	"github.com/devtrail/devtrail-be/internal/storage"
	"github.com/devtrail/devtrail-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Photo upload directory
	photos, err := storage.NewPhotoStore(cfg.UploadPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload directory")
	}

	// Set up the activity feed hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, eventService)
	geo := geocoder.NewClient(cfg.GeocoderURL)
	bootcampService := services.NewBootcampService(db, geo, eventService)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpire)

	// Set up and run the background token sweeper
	sweeper, err := monitoring.NewTokenSweeper(userService, cfg.SweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid TOKEN_SWEEP_SCHEDULE")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(api.Options{
		Issuer:        issuer,
		Users:         userService,
		Bootcamps:     bootcampService,
		Events:        eventService,
		Hub:           hub,
		Photos:        photos,
		MaxUpload:     cfg.MaxUploadBytes,
		TokenExpire:   cfg.JWTExpire,
		AllowedOrigin: cfg.AllowedOrigin,
		IsProd:        cfg.Env == "production",
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
