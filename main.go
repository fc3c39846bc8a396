package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/config"
	"github.com/ah91648/roomie-roster-sub000/internal/database"
	"github.com/ah91648/roomie-roster-sub000/internal/engine"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/ah91648/roomie-roster-sub000/internal/server"
	"github.com/ah91648/roomie-roster-sub000/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	store, cleanup, err := openStore(cfg)
	if err != nil {
		slog.Error("opening storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx := context.Background()
	authService, err := services.NewAuthService(ctx, cfg, store.Roommates)
	if err != nil {
		slog.Error("creating auth service", "error", err)
		os.Exit(1)
	}

	scheduler := engine.New(store.Roommates, store.Chores, store.Assignments, store.Schedule)

	if cfg.AutoAssign {
		go runAssignmentScheduler(scheduler)
	}

	srv := server.New(store, cfg, authService, scheduler)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (*repository.Store, func(), error) {
	if cfg.StorageBackend == config.BackendJSON {
		file, err := repository.OpenJSONFile(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using json storage", "path", cfg.DataFile)
		return repository.NewJSONStore(file), func() {}, nil
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("using sqlite storage", "path", cfg.DatabasePath)
	return repository.NewSQLiteStore(db), func() { db.Close() }, nil
}

// runAssignmentScheduler re-deals the board at cycle boundaries. The
// first check fires immediately so a fresh deployment assigns chores
// without waiting for the next tick.
func runAssignmentScheduler(scheduler *engine.Engine) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		ctx := context.Background()
		ran, err := scheduler.RunIfDue(ctx)
		if err != nil {
			slog.Error("running scheduled assignment", "error", err)
		} else if ran {
			slog.Info("assigned chores for the new cycle")
		}
		<-ticker.C
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
