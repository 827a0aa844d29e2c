package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// IngestQueue defines the interface for the event dispatch worker pool
type IngestQueue interface {
	Enqueue(event *models.LogEvent) bool
	QueueDepth() int
}

// Pinger is a backing store probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// StatsRenderer renders the all-time stats message of one player.
type StatsRenderer interface {
	Render(ctx context.Context, playerID, name string, tbl locale.Table) (string, error)
}

// TopsRenderer renders the live leaderboard message.
type TopsRenderer interface {
	Render(ctx context.Context, tbl locale.Table) (string, error)
}

type Config struct {
	WorkerPool IngestQueue
	Checks     map[string]Pinger
	Logger     *zap.Logger
	HookToken  string

	// Preview renderers, nil when the hook is disabled
	AllTimeStats StatsRenderer
	Tops         TopsRenderer
	Locales      *locale.Catalog
	DefaultLang  locale.Lang
}

type Handler struct {
	pool         IngestQueue
	checks       map[string]Pinger
	logger       *zap.SugaredLogger
	validator    *validator.Validate
	hookToken    string
	allTimeStats StatsRenderer
	tops         TopsRenderer
	locales      *locale.Catalog
	defaultLang  locale.Lang
}

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locales := cfg.Locales
	if locales == nil {
		locales = locale.Default()
	}
	return &Handler{
		pool:         cfg.WorkerPool,
		checks:       cfg.Checks,
		logger:       logger.Sugar(),
		validator:    validator.New(),
		hookToken:    cfg.HookToken,
		allTimeStats: cfg.AllTimeStats,
		tops:         cfg.Tops,
		locales:      locales,
		defaultLang:  cfg.DefaultLang,
	}
}
