package hooks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/logic"
	"github.com/hll-crcon/stats-hooks/internal/models"
	"github.com/hll-crcon/stats-hooks/internal/rcon"
)

const AllTimeStatsName = "all_time_stats"

type AllTimeStatsConfig struct {
	Commands         []string
	DisplayOnConnect bool
	Cooldown         time.Duration
	Style            logic.DurationStyle
}

// AllTimeStats messages a player their all-time stats on a chat command or
// when they connect.
type AllTimeStats struct {
	cfg      AllTimeStatsConfig
	profiles ProfileService
	stats    StatsStore
	msg      Messenger
	gate     logic.Gate
	tbl      locale.Table
	now      func() time.Time
}

func NewAllTimeStats(cfg AllTimeStatsConfig, profiles ProfileService, stats StatsStore, msg Messenger, gate logic.Gate, tbl locale.Table) *AllTimeStats {
	if gate == nil {
		gate = logic.NopGate{}
	}
	return &AllTimeStats{
		cfg:      cfg,
		profiles: profiles,
		stats:    stats,
		msg:      msg,
		gate:     gate,
		tbl:      tbl,
		now:      time.Now,
	}
}

func (h *AllTimeStats) Name() string { return AllTimeStatsName }

func (h *AllTimeStats) Handle(ctx context.Context, ev *models.LogEvent) (*Outcome, error) {
	switch ev.Kind() {
	case models.EventChat:
		return h.OnChat(ctx, ev)
	case models.EventConnected:
		return h.OnConnected(ctx, ev)
	default:
		return nil, nil
	}
}

// OnChat answers a configured stats command.
func (h *AllTimeStats) OnChat(ctx context.Context, ev *models.LogEvent) (*Outcome, error) {
	text := ev.ChatText()
	if text == "" {
		return nil, fail(KindMissingField, "all_time_stats.chat", errors.New("sub_content"))
	}
	if !matchCommand(text, h.cfg.Commands) {
		return nil, nil
	}
	return h.deliver(ctx, ev, true)
}

// OnConnected runs only when display on connect is enabled.
func (h *AllTimeStats) OnConnected(ctx context.Context, ev *models.LogEvent) (*Outcome, error) {
	if !h.cfg.DisplayOnConnect {
		return nil, nil
	}
	return h.deliver(ctx, ev, false)
}

func (h *AllTimeStats) deliver(ctx context.Context, ev *models.LogEvent, cooldown bool) (*Outcome, error) {
	playerID, name := ev.PlayerID1, ev.PlayerName1
	if playerID == "" || name == "" {
		return nil, fail(KindMissingField, "all_time_stats", errors.New("player_id_1 or player_name_1"))
	}

	if cooldown {
		ok, err := h.gate.Acquire(ctx, AllTimeStatsName+":"+playerID, h.cfg.Cooldown)
		if err != nil {
			return nil, fail(KindHost, "all_time_stats.cooldown", err)
		}
		if !ok {
			return nil, fail(KindCooldown, "all_time_stats", nil)
		}
	}

	text, err := h.Render(ctx, playerID, name, h.tbl)
	if err != nil {
		return nil, err
	}
	if err := h.msg.MessagePlayer(ctx, playerID, text); err != nil {
		return nil, fail(KindHost, "all_time_stats.message_player", err)
	}

	return &Outcome{
		Hook:       AllTimeStatsName,
		Trigger:    ev.Kind(),
		PlayerID:   playerID,
		Platform:   rcon.Platform(playerID),
		Recipients: 1,
		MessageLen: len(text),
	}, nil
}

// Render builds the stats message of one player in the language of tbl.
func (h *AllTimeStats) Render(ctx context.Context, playerID, name string, tbl locale.Table) (string, error) {
	profile, err := h.profiles.GetPlayerProfile(ctx, playerID, 0)
	if errors.Is(err, rcon.ErrNotFound) || (err == nil && profile == nil) {
		return "", fail(KindNotTracked, "all_time_stats.profile", err)
	}
	if err != nil {
		return "", fail(KindHost, "all_time_stats.profile", err)
	}

	stats, err := h.stats.AllTimeStats(ctx, playerID)
	if errors.Is(err, logic.ErrNotTracked) {
		return "", fail(KindNotTracked, "all_time_stats.stats", err)
	}
	if err != nil {
		return "", fail(KindQuery, "all_time_stats.stats", err)
	}

	text, err := ComposeAllTimeStats(name, profile, stats, h.now(), tbl, h.cfg.Style)
	if err != nil {
		return "", fail(KindInvalidInput, "all_time_stats.compose", err)
	}
	return text, nil
}

func matchCommand(text string, commands []string) bool {
	for _, c := range commands {
		if strings.EqualFold(text, c) {
			return true
		}
	}
	return false
}
