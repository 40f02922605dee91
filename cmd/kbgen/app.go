package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/database"
	"github.com/goatkit/kbgen/internal/events"
	"github.com/goatkit/kbgen/internal/generation"
	"github.com/goatkit/kbgen/internal/hooks"
	"github.com/goatkit/kbgen/internal/metrics"
	"github.com/goatkit/kbgen/internal/repository"
	"github.com/goatkit/kbgen/internal/service"
	"github.com/goatkit/kbgen/pkg/logger"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	db        *sqlx.DB
	publisher events.Publisher
	metrics   *metrics.Metrics

	settings  *service.SettingsService
	queue     *service.QueueService
	kb        *service.KnowledgeBaseService
	generator *generation.Client
	hook      *hooks.TicketClosedHandler
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Log.Env, cfg.Log.Level), nil
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	publisher, err := events.New(cfg.Events.Brokers, cfg.Events.Topic)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}

	m := metrics.Default()
	activity := repository.NewActivityRepository(db)
	tickets := repository.NewTicketRepository(db)
	kbRepo := repository.NewKnowledgeBaseRepository(db)

	opts := []service.Option{
		service.WithActivityLog(activity),
		service.WithEvents(publisher),
		service.WithMetrics(m),
		service.WithLogger(log.With().Str("component", "service").Logger()),
	}
	queue := service.NewQueueService(repository.NewQueueRepository(db), tickets, opts...)
	kb := service.NewKnowledgeBaseService(kbRepo, queue, opts...)
	settings := service.NewSettingsService(repository.NewSettingsRepository(db), cfg.AddonDefaults(), cfg.Platform.SettingsModule)

	generator := generation.NewClient(tickets, kbRepo,
		generation.WithActivityLog(activity),
		generation.WithMetrics(m),
		generation.WithLogger(log.With().Str("component", "generation").Logger()),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		publisher: publisher,
		metrics:   m,
		settings:  settings,
		queue:     queue,
		kb:        kb,
		generator: generator,
		hook:      hooks.NewTicketClosedHandler(settings, queue, log.With().Str("component", "hooks").Logger()),
	}, nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close event publisher")
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close database")
	}
}
