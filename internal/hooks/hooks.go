// Package hooks reacts to host game events: it fetches player history and
// live match state, renders localized messages and delivers them in game.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hll-crcon/stats-hooks/internal/models"
)

// ProfileService returns the host's historical summary of a player.
type ProfileService interface {
	GetPlayerProfile(ctx context.Context, playerID string, nbSessions int) (*models.PlayerProfile, error)
}

// StatsStore aggregates all recorded games of a player.
type StatsStore interface {
	AllTimeStats(ctx context.Context, playerID string) (*models.AllTimeStats, error)
}

// GameState is the live match state of the host.
type GameState interface {
	GetTeamView(ctx context.Context) (*models.TeamView, error)
	GetStatus(ctx context.Context) (*models.ServerStatus, error)
	GetVipIDs(ctx context.Context) ([]models.VipEntry, error)
}

// Messenger delivers in-game messages.
type Messenger interface {
	MessagePlayer(ctx context.Context, playerID, message string) error
	MessageAllPlayers(ctx context.Context, message string) (int, error)
}

// VIPManager grants timed VIP.
type VIPManager interface {
	AddVip(ctx context.Context, playerID, description, expiration string) error
}

// Kind classifies hook failures.
type Kind string

const (
	KindMissingField Kind = "missing_field"
	KindNotTracked   Kind = "not_tracked"
	KindCooldown     Kind = "cooldown"
	KindInvalidInput Kind = "invalid_input"
	KindQuery        Kind = "query"
	KindHost         Kind = "host"
)

// Error is a failed hook run. Players never see it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a hook error, KindHost for foreign errors.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindHost
}

// Expected reports whether err is part of normal operation and should not be
// logged as an error.
func Expected(err error) bool {
	switch KindOf(err) {
	case KindMissingField, KindNotTracked, KindCooldown:
		return true
	default:
		return false
	}
}

func fail(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Outcome describes what a hook did with one event.
type Outcome struct {
	Hook       string
	Trigger    models.EventKind
	PlayerID   string
	Platform   string
	Recipients int
	MessageLen int
	VIPGranted int
	VIPAlready int
	Duration   time.Duration
	Err        error
}

// Hook reacts to host events. Handle returns a nil Outcome when the event is
// not meant for the hook.
type Hook interface {
	Name() string
	Handle(ctx context.Context, ev *models.LogEvent) (*Outcome, error)
}

var (
	hookRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hll_hooks_runs_total",
		Help: "Hook runs that delivered a message",
	}, []string{"hook", "trigger"})

	hookErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hll_hooks_errors_total",
		Help: "Hook runs that ended without a message, by error kind",
	}, []string{"hook", "kind"})

	hookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hll_hooks_duration_seconds",
		Help:    "Time spent handling one event",
		Buckets: prometheus.DefBuckets,
	}, []string{"hook"})

	vipGrants = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hll_hooks_vip_total",
		Help: "VIP decisions at match end",
	}, []string{"result"})
)
