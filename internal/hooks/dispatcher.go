package hooks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hll-crcon/stats-hooks/internal/models"
	"github.com/hll-crcon/stats-hooks/internal/rcon"
)

// Dispatcher runs every registered hook on an event. Hook failures are
// logged and counted, never propagated.
type Dispatcher struct {
	hooks  []Hook
	logger *zap.SugaredLogger
}

func NewDispatcher(logger *zap.SugaredLogger, hooks ...Hook) *Dispatcher {
	return &Dispatcher{hooks: hooks, logger: logger}
}

// Dispatch returns one Outcome per hook that acted on the event, including
// failed runs. Missing event fields end a run silently.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *models.LogEvent) []Outcome {
	kind := ev.Kind()
	if kind == models.EventUnknown {
		return nil
	}

	var outcomes []Outcome
	for _, h := range d.hooks {
		start := time.Now()
		out, err := h.Handle(ctx, ev)
		elapsed := time.Since(start)

		if err != nil {
			k := KindOf(err)
			hookErrors.WithLabelValues(h.Name(), string(k)).Inc()
			if k == KindMissingField {
				continue
			}
			d.logFailure(h.Name(), ev, k, err)
			outcomes = append(outcomes, Outcome{
				Hook:     h.Name(),
				Trigger:  kind,
				PlayerID: ev.PlayerID1,
				Platform: rcon.Platform(ev.PlayerID1),
				Duration: elapsed,
				Err:      err,
			})
			continue
		}
		if out == nil {
			continue
		}

		out.Duration = elapsed
		hookRuns.WithLabelValues(h.Name(), string(kind)).Inc()
		hookDuration.WithLabelValues(h.Name()).Observe(elapsed.Seconds())
		if out.Err != nil {
			hookErrors.WithLabelValues(h.Name(), string(KindOf(out.Err))).Inc()
			d.logger.Warnw("Hook completed with errors", "hook", h.Name(), "trigger", kind, "error", out.Err)
		} else {
			d.logger.Infow("Hook delivered",
				"hook", h.Name(),
				"trigger", kind,
				"player_id", out.PlayerID,
				"recipients", out.Recipients,
				"vip_granted", out.VIPGranted,
				"duration", elapsed,
			)
		}
		outcomes = append(outcomes, *out)
	}
	return outcomes
}

func (d *Dispatcher) logFailure(hook string, ev *models.LogEvent, kind Kind, err error) {
	if Expected(err) {
		d.logger.Debugw("Hook skipped", "hook", hook, "kind", kind, "player_id", ev.PlayerID1, "error", err)
		return
	}
	d.logger.Errorw("Hook failed", "hook", hook, "kind", kind, "player_id", ev.PlayerID1, "action", ev.Action, "error", err)
}
