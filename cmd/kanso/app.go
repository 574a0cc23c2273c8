package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-habits/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habits/internal/config"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"github.com/comitanigiacomo/kanso-habits/internal/logger"
)

// app bundles everything a command needs and the cleanup for it.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	tracker *services.HabitTracker
	closers []func()
}

func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}

	repo, err := a.buildRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.tracker = services.NewHabitTracker(repo, log)
	a.tracker.Load(ctx)
	return a, nil
}

func (a *app) buildRepository(ctx context.Context) (domain.StateRepository, error) {
	var repo domain.StateRepository

	switch a.cfg.Store {
	case config.StoreMemory:
		repo = repository.NewInMemoryStateRepository()
	case config.StorePostgres:
		db, err := sqlx.Connect("pgx", a.cfg.DB.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		db.SetMaxOpenConns(2)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
		a.closers = append(a.closers, func() { db.Close() })

		pg := repository.NewPostgresStateRepository(db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		repo = pg
	default:
		repo = repository.NewJSONFileRepository(a.cfg.DataFile)
	}

	if a.cfg.RedisURL == "" {
		return repo, nil
	}

	rdb, err := cache.NewRedisClient(ctx, a.cfg.RedisURL)
	if err != nil {
		a.log.Warn("redis unavailable, continuing without cache", zap.Error(err))
		return repo, nil
	}
	a.closers = append(a.closers, func() { rdb.Close() })
	return repository.NewCachedStateRepository(repo, rdb, "", a.log), nil
}

func (a *app) Close() {
	if a.tracker != nil {
		a.tracker.StopReminder()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = logger.Sync(a.log)
}
