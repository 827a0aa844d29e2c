package hooks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/logic"
	"github.com/hll-crcon/stats-hooks/internal/models"
)

func liveTeamView() *models.TeamView {
	return &models.TeamView{
		Allies: models.TeamSide{
			Squads: map[string]models.LiveSquad{
				"able": {Type: models.SquadInfantry, Players: []models.LivePlayer{
					{Name: "Alice", PlayerID: "p1", Combat: 80, Support: 40, Kills: 12, Deaths: 4, Offense: 100, Defense: 60},
					{Name: "Carl", PlayerID: "p3", Combat: 10, Kills: 1, Deaths: 6},
				}},
			},
		},
		Axis: models.TeamSide{
			Squads: map[string]models.LiveSquad{
				"baker": {Type: models.SquadInfantry, Players: []models.LivePlayer{
					{Name: "Erik", PlayerID: "p5", Combat: 60, Support: 20, Kills: 6, Deaths: 3, Offense: 20, Defense: 20},
				}},
			},
		},
	}
}

type topsFixture struct {
	hook  *Tops
	msg   *MockMessenger
	vip   *MockVIPManager
	state *MockGameState
	gate  *MockGate
}

func newTops(cfg TopsConfig) *topsFixture {
	f := &topsFixture{
		msg:  &MockMessenger{},
		vip:  &MockVIPManager{},
		gate: &MockGate{},
		state: &MockGameState{
			GetTeamViewFunc: func(ctx context.Context) (*models.TeamView, error) { return liveTeamView(), nil },
			GetStatusFunc: func(ctx context.Context) (*models.ServerStatus, error) {
				return &models.ServerStatus{CurrentPlayers: 60}, nil
			},
		},
	}
	if cfg.Categories == nil {
		cfg.Categories = []logic.Category{
			{Role: logic.RoleInfantry, Kind: logic.EntityPlayer, Metric: logic.MetricTeamplay, Limit: 3},
			{Role: logic.RoleInfantry, Kind: logic.EntityPlayer, Metric: logic.MetricRatio, Limit: 3},
			{Role: logic.RoleInfantry, Kind: logic.EntitySquad, Metric: logic.MetricTeamplay, Limit: 1},
		}
	}
	if cfg.Weights == (logic.Weights{}) {
		cfg.Weights = logic.DefaultWeights()
	}
	f.hook = NewTops(cfg, f.state, f.msg, f.vip, f.gate, locale.Default().Table(locale.English))
	f.hook.now = func() time.Time { return testNow }
	return f
}

func TestTopsOnChat(t *testing.T) {
	f := newTops(TopsConfig{Commands: []string{"!top"}})

	out, err := f.hook.Handle(context.Background(), chatEvent("!TOP", "p1", "Alice"))
	if err != nil || out == nil {
		t.Fatalf("Handle() = %+v, %v", out, err)
	}
	text := f.msg.Sent["p1"]
	for _, want := range []string{"TOP PLAYERS", "#1 Alice [Allies] : 100", "#2 Erik [Axis] : 70", "infantry players : ratio", "   Alice, Carl"} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
	if len(f.vip.Calls) != 0 {
		t.Error("chat command must never grant VIP")
	}
}

func TestTopsOnChatCooldown(t *testing.T) {
	f := newTops(TopsConfig{Commands: []string{"!top"}, Cooldown: time.Minute})
	ev := chatEvent("!top", "p1", "Alice")
	if _, err := f.hook.Handle(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if _, err := f.hook.Handle(context.Background(), ev); KindOf(err) != KindCooldown {
		t.Errorf("error = %v, want cooldown", err)
	}
}

func TestTopsLiveStateFailure(t *testing.T) {
	f := newTops(TopsConfig{Commands: []string{"!top"}})
	f.state.GetTeamViewFunc = func(ctx context.Context) (*models.TeamView, error) {
		return nil, errors.New("rcon timeout")
	}
	_, err := f.hook.Handle(context.Background(), chatEvent("!top", "p1", "Alice"))
	if KindOf(err) != KindHost {
		t.Errorf("error = %v, want host failure", err)
	}
	if len(f.msg.Sent) != 0 {
		t.Error("no message expected")
	}
}

func TestTopsOnMatchEndGrantsVIP(t *testing.T) {
	f := newTops(TopsConfig{
		OnMatchEnd: true,
		VIP:        logic.VIPPolicy{Enabled: true, Winners: 2, Hours: 24, SeedLimit: 40, Note: "tops"},
	})

	out, err := f.hook.Handle(context.Background(), &models.LogEvent{Action: "MATCH ENDED"})
	if err != nil || out == nil {
		t.Fatalf("Handle() = %+v, %v", out, err)
	}
	if out.VIPGranted != 2 || out.Recipients != 50 || out.Err != nil {
		t.Errorf("outcome = %+v", out)
	}
	if len(f.vip.Calls) != 2 || f.vip.Calls[0].PlayerID != "p1" || f.vip.Calls[1].PlayerID != "p5" {
		t.Fatalf("vip calls = %+v", f.vip.Calls)
	}
	if f.vip.Calls[0].Expiration != "2024-05-02T20:00:00Z" || f.vip.Calls[0].Description != "Alice - tops" {
		t.Errorf("first grant = %+v", f.vip.Calls[0])
	}
	if len(f.msg.Broadcast) != 1 || !strings.Contains(f.msg.Broadcast[0], "#1 Alice [Allies] : 100 (VIP granted)") {
		t.Errorf("broadcast = %v", f.msg.Broadcast)
	}
}

func TestTopsExistingLongerVIP(t *testing.T) {
	f := newTops(TopsConfig{
		OnMatchEnd: true,
		VIP:        logic.VIPPolicy{Enabled: true, Winners: 1, Hours: 24},
	})
	f.state.GetVipIDsFunc = func(ctx context.Context) ([]models.VipEntry, error) {
		return []models.VipEntry{{PlayerID: "p1", Expiration: models.HostTime{Time: testNow.Add(48 * time.Hour)}}}, nil
	}

	out, err := f.hook.Handle(context.Background(), &models.LogEvent{Action: "MATCH ENDED"})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.vip.Calls) != 0 {
		t.Errorf("unexpected grant: %+v", f.vip.Calls)
	}
	if out.VIPAlready != 1 || out.VIPGranted != 0 {
		t.Errorf("outcome = %+v", out)
	}
	if !strings.Contains(f.msg.Broadcast[0], "(already VIP)") {
		t.Errorf("broadcast = %s", f.msg.Broadcast[0])
	}
}

func TestTopsVIPBelowSeedLimit(t *testing.T) {
	f := newTops(TopsConfig{
		OnMatchEnd: true,
		VIP:        logic.VIPPolicy{Enabled: true, Winners: 3, Hours: 24, SeedLimit: 80},
	})
	out, err := f.hook.Handle(context.Background(), &models.LogEvent{Action: "MATCH ENDED"})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.vip.Calls) != 0 || out.VIPGranted != 0 {
		t.Errorf("seeding server must not grant VIP: %+v", f.vip.Calls)
	}
}

func TestTopsVIPFailureStillBroadcasts(t *testing.T) {
	f := newTops(TopsConfig{
		OnMatchEnd: true,
		VIP:        logic.VIPPolicy{Enabled: true, Winners: 1, Hours: 24},
	})
	f.vip.AddErr = errors.New("vip list locked")

	out, err := f.hook.Handle(context.Background(), &models.LogEvent{Action: "MATCH ENDED"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Err == nil || KindOf(out.Err) != KindHost {
		t.Errorf("outcome error = %v", out.Err)
	}
	if len(f.msg.Broadcast) != 1 || strings.Contains(f.msg.Broadcast[0], "VIP granted") {
		t.Errorf("broadcast = %v", f.msg.Broadcast)
	}
}

func TestTopsVIPLockFailureReleasesHeldLocks(t *testing.T) {
	f := newTops(TopsConfig{
		OnMatchEnd: true,
		VIP:        logic.VIPPolicy{Enabled: true, Winners: 2, Hours: 24, SeedLimit: 40},
	})
	f.gate.FailOn = "vip:p5"

	out, err := f.hook.Handle(context.Background(), &models.LogEvent{Action: "MATCH ENDED"})
	if err != nil {
		t.Fatal(err)
	}
	if KindOf(out.Err) != KindHost || len(f.vip.Calls) != 0 {
		t.Errorf("outcome = %+v, vip calls = %+v", out, f.vip.Calls)
	}
	if len(f.gate.held) != 0 {
		t.Errorf("locks still held: %v", f.gate.held)
	}
	if len(f.msg.Broadcast) != 1 {
		t.Errorf("broadcast = %v", f.msg.Broadcast)
	}
}

func TestTopsMatchEndDisabled(t *testing.T) {
	f := newTops(TopsConfig{})
	out, err := f.hook.Handle(context.Background(), &models.LogEvent{Action: "MATCH ENDED"})
	if out != nil || err != nil || len(f.msg.Broadcast) != 0 {
		t.Errorf("Handle() = %+v, %v", out, err)
	}
}

func TestTopsRender(t *testing.T) {
	f := newTops(TopsConfig{VIP: logic.VIPPolicy{Enabled: true, Winners: 1, Hours: 24}})
	text, err := f.hook.Render(context.Background(), locale.Default().Table(locale.Polish))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "NAJLEPSI GRACZE") {
		t.Errorf("render = %s", text)
	}
	if len(f.vip.Calls) != 0 {
		t.Error("render must not grant VIP")
	}
}
