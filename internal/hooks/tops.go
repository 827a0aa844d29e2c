package hooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/logic"
	"github.com/hll-crcon/stats-hooks/internal/models"
	"github.com/hll-crcon/stats-hooks/internal/rcon"
)

const TopsName = "tops"

// vipLockTTL bounds how long a crashed grant can hold a player's VIP lock.
const vipLockTTL = 30 * time.Second

type TopsConfig struct {
	Commands   []string
	OnMatchEnd bool
	Cooldown   time.Duration
	Categories []logic.Category
	Weights    logic.Weights
	VIP        logic.VIPPolicy
}

// Tops ranks live players and squads. It answers a chat command and
// broadcasts the final leaderboard at match end, rewarding winners with VIP.
type Tops struct {
	cfg   TopsConfig
	state GameState
	msg   Messenger
	vip   VIPManager
	gate  logic.Gate
	tbl   locale.Table
	now   func() time.Time
}

func NewTops(cfg TopsConfig, state GameState, msg Messenger, vip VIPManager, gate logic.Gate, tbl locale.Table) *Tops {
	if gate == nil {
		gate = logic.NopGate{}
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = logic.DefaultCategories(3, 2)
	}
	return &Tops{
		cfg:   cfg,
		state: state,
		msg:   msg,
		vip:   vip,
		gate:  gate,
		tbl:   tbl,
		now:   time.Now,
	}
}

func (h *Tops) Name() string { return TopsName }

func (h *Tops) Handle(ctx context.Context, ev *models.LogEvent) (*Outcome, error) {
	switch ev.Kind() {
	case models.EventChat:
		return h.OnChat(ctx, ev)
	case models.EventMatchEnd:
		return h.OnMatchEnd(ctx, ev)
	default:
		return nil, nil
	}
}

// OnChat sends the current leaderboard to the requesting player.
func (h *Tops) OnChat(ctx context.Context, ev *models.LogEvent) (*Outcome, error) {
	text := ev.ChatText()
	if text == "" {
		return nil, fail(KindMissingField, "tops.chat", errors.New("sub_content"))
	}
	if !matchCommand(text, h.cfg.Commands) {
		return nil, nil
	}

	playerID := ev.PlayerID1
	if playerID == "" || ev.PlayerName1 == "" {
		return nil, fail(KindMissingField, "tops.chat", errors.New("player_id_1 or player_name_1"))
	}

	ok, err := h.gate.Acquire(ctx, TopsName+":"+playerID, h.cfg.Cooldown)
	if err != nil {
		return nil, fail(KindHost, "tops.cooldown", err)
	}
	if !ok {
		return nil, fail(KindCooldown, "tops", nil)
	}

	board, err := h.Board(ctx)
	if err != nil {
		return nil, err
	}
	msg := ComposeTops(board, h.tbl)
	if err := h.msg.MessagePlayer(ctx, playerID, msg); err != nil {
		return nil, fail(KindHost, "tops.message_player", err)
	}

	return &Outcome{
		Hook:       TopsName,
		Trigger:    models.EventChat,
		PlayerID:   playerID,
		Platform:   rcon.Platform(playerID),
		Recipients: 1,
		MessageLen: len(msg),
	}, nil
}

// OnMatchEnd grants VIP to the winners and broadcasts the final leaderboard.
// VIP failures are reported on the Outcome and do not stop the broadcast.
func (h *Tops) OnMatchEnd(ctx context.Context, ev *models.LogEvent) (*Outcome, error) {
	if !h.cfg.OnMatchEnd {
		return nil, nil
	}

	board, err := h.Board(ctx)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Hook: TopsName, Trigger: models.EventMatchEnd}
	out.VIPGranted, out.VIPAlready, out.Err = h.grantVIP(ctx, &board)

	msg := ComposeTops(board, h.tbl)
	sent, err := h.msg.MessageAllPlayers(ctx, msg)
	out.Recipients = sent
	out.MessageLen = len(msg)
	if err != nil && sent == 0 {
		return nil, fail(KindHost, "tops.message_all_players", err)
	}
	if err != nil {
		out.Err = errors.Join(out.Err, fail(KindHost, "tops.message_all_players", err))
	}
	return out, nil
}

// Board fetches the live state and ranks every configured category.
func (h *Tops) Board(ctx context.Context) (models.TopsBoard, error) {
	var (
		tv     *models.TeamView
		status *models.ServerStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tv, err = h.state.GetTeamView(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		status, err = h.state.GetStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.TopsBoard{}, fail(KindHost, "tops.live_state", err)
	}

	board, err := logic.BuildTops(logic.SnapshotFromTeamView(tv), h.cfg.Categories, h.cfg.Weights)
	if err != nil {
		return models.TopsBoard{}, fail(KindInvalidInput, "tops.rank", err)
	}
	if status != nil && status.CurrentPlayers > board.PlayerCount {
		board.PlayerCount = status.CurrentPlayers
	}
	return board, nil
}

// Render builds the current leaderboard in the language of tbl without
// granting anything.
func (h *Tops) Render(ctx context.Context, tbl locale.Table) (string, error) {
	board, err := h.Board(ctx)
	if err != nil {
		return "", err
	}
	return ComposeTops(board, tbl), nil
}

func (h *Tops) grantVIP(ctx context.Context, board *models.TopsBoard) (granted, already int, err error) {
	policy := h.cfg.VIP
	if !policy.Enabled || h.vip == nil {
		return 0, 0, nil
	}

	now := h.now()
	candidates := policy.Decide(board, nil, now)
	if len(candidates) == 0 {
		return 0, 0, nil
	}

	// Hold each winner's lock across the VIP list read and the grant.
	locked := make(map[string]bool, len(candidates))
	defer func() {
		for id := range locked {
			_ = h.gate.Release(context.WithoutCancel(ctx), "vip:"+id)
		}
	}()
	for _, c := range candidates {
		ok, lerr := h.gate.Acquire(ctx, "vip:"+c.PlayerID, vipLockTTL)
		if lerr != nil {
			return 0, 0, fail(KindHost, "tops.vip_lock", lerr)
		}
		if ok {
			locked[c.PlayerID] = true
		}
	}

	current, err := h.state.GetVipIDs(ctx)
	if err != nil {
		return 0, 0, fail(KindHost, "tops.get_vip_ids", err)
	}

	var errs []error
	for _, d := range policy.Decide(board, current, now) {
		if !locked[d.PlayerID] {
			continue
		}
		if d.Action == logic.VIPAlreadyHeld {
			logic.MarkVIP(board, d.PlayerID, models.VIPAlready, policy.Winners)
			vipGrants.WithLabelValues("already").Inc()
			already++
			continue
		}
		note := d.Name
		if policy.Note != "" {
			note = fmt.Sprintf("%s - %s", d.Name, policy.Note)
		}
		if aerr := h.vip.AddVip(ctx, d.PlayerID, note, d.ExpirationISO()); aerr != nil {
			vipGrants.WithLabelValues("failed").Inc()
			errs = append(errs, fail(KindHost, "tops.add_vip", fmt.Errorf("%s: %w", d.PlayerID, aerr)))
			continue
		}
		logic.MarkVIP(board, d.PlayerID, models.VIPGranted, policy.Winners)
		vipGrants.WithLabelValues("granted").Inc()
		granted++
	}
	return granted, already, errors.Join(errs...)
}
