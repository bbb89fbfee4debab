package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/auth"
	"github.com/ukydev/fleet-ledger/internal/backup"
	"github.com/ukydev/fleet-ledger/internal/config"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/handlers"
	"github.com/ukydev/fleet-ledger/internal/middleware"
	"github.com/ukydev/fleet-ledger/internal/store"
	"github.com/ukydev/fleet-ledger/internal/trips"
)

const loginWindowSeconds = 60

// buildHandler wires every handler of the API over the given stores.
func buildHandler(cfg config.Config, profiles db.ProfileCollection, tripColl db.TripCollection, local *store.Local) (http.Handler, error) {
	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}

	calc := trips.Calculator{
		CommissionRate:     cfg.CommissionRate,
		InefficiencyMargin: cfg.FuelMarginLiters,
	}

	h := handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService, profiles),
		Trips:       handlers.NewTripHandler(profiles, tripColl, local, calc),
		Ledger:      handlers.NewLedgerHandler(local),
		Tires:       handlers.NewTireHandler(profiles, tripColl, local),
		Maintenance: handlers.NewMaintenanceHandler(profiles, tripColl, local),
		Backup:      handlers.NewBackupHandler(backup.NewService(local, tripColl)),
	}

	limiter := middleware.NewRateLimitMiddleware()
	return h.Handler(middleware.NewAuthMiddleware(authService), limiter.RateLimit(cfg.LoginRateLimit, loginWindowSeconds)), nil
}

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI, 10*time.Second)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}
	log.WithField("database", cfg.MongoDatabase).Info("Connected to MongoDB")

	local, err := store.Open(cfg.LocalDBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open local store")
	}
	defer local.Close()

	handler, err := buildHandler(cfg,
		&db.MongoProfileCollection{Collection: database.Collection(db.ProfilesCollection)},
		&db.MongoTripCollection{Collection: database.Collection(db.TripsCollection)},
		local,
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to build handlers")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
