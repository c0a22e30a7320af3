// Package main is the entry point for the Railbird poker analytics server.
// It opens the two application databases, wires the record services and the
// analytics engine behind the HTTP API, and runs the maintenance scheduler.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/railbird/internal/config"
	"github.com/aristath/railbird/internal/database"
	"github.com/aristath/railbird/internal/scheduler"
	"github.com/aristath/railbird/internal/server"
	"github.com/aristath/railbird/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("Starting Railbird")

	railbirdDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "railbird.db"),
		Name: "railbird",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open railbird.db")
	}
	defer railbirdDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache.db")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{railbirdDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Migration failed")
		}
	}

	srv := server.New(server.Config{
		Log:        log,
		RailbirdDB: railbirdDB,
		CacheDB:    cacheDB,
		Config:     cfg,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
	})

	sched := scheduler.New(log)
	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{"0 3 * * *", scheduler.NewCacheSweepJob(srv.Cache(), log)},
		{"0 4 * * *", scheduler.NewWarmSummaryJob(srv.SessionService(), srv.Cache(), log)},
		{"@hourly", scheduler.NewWALCheckpointJob(log, railbirdDB, cacheDB)},
	}
	for _, entry := range jobs {
		if err := sched.AddJob(entry.schedule, entry.job); err != nil {
			log.Fatal().Err(err).Str("job", entry.job.Name()).Msg("Failed to register job")
		}
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
