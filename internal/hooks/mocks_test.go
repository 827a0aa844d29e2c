package hooks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hll-crcon/stats-hooks/internal/models"
)

type MockProfileService struct {
	GetPlayerProfileFunc func(ctx context.Context, playerID string, nbSessions int) (*models.PlayerProfile, error)
}

func (m *MockProfileService) GetPlayerProfile(ctx context.Context, playerID string, nbSessions int) (*models.PlayerProfile, error) {
	if m.GetPlayerProfileFunc != nil {
		return m.GetPlayerProfileFunc(ctx, playerID, nbSessions)
	}
	return &models.PlayerProfile{PlayerID: playerID}, nil
}

type MockStatsStore struct {
	AllTimeStatsFunc func(ctx context.Context, playerID string) (*models.AllTimeStats, error)
}

func (m *MockStatsStore) AllTimeStats(ctx context.Context, playerID string) (*models.AllTimeStats, error) {
	if m.AllTimeStatsFunc != nil {
		return m.AllTimeStatsFunc(ctx, playerID)
	}
	return &models.AllTimeStats{}, nil
}

type MockGameState struct {
	GetTeamViewFunc func(ctx context.Context) (*models.TeamView, error)
	GetStatusFunc   func(ctx context.Context) (*models.ServerStatus, error)
	GetVipIDsFunc   func(ctx context.Context) ([]models.VipEntry, error)
}

func (m *MockGameState) GetTeamView(ctx context.Context) (*models.TeamView, error) {
	if m.GetTeamViewFunc != nil {
		return m.GetTeamViewFunc(ctx)
	}
	return &models.TeamView{}, nil
}

func (m *MockGameState) GetStatus(ctx context.Context) (*models.ServerStatus, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx)
	}
	return &models.ServerStatus{}, nil
}

func (m *MockGameState) GetVipIDs(ctx context.Context) ([]models.VipEntry, error) {
	if m.GetVipIDsFunc != nil {
		return m.GetVipIDsFunc(ctx)
	}
	return nil, nil
}

// MockMessenger records every delivered message
type MockMessenger struct {
	mu        sync.Mutex
	Sent      map[string]string
	Broadcast []string
	Err       error
}

func (m *MockMessenger) MessagePlayer(ctx context.Context, playerID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Sent == nil {
		m.Sent = map[string]string{}
	}
	m.Sent[playerID] = message
	return nil
}

func (m *MockMessenger) MessageAllPlayers(ctx context.Context, message string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.Broadcast = append(m.Broadcast, message)
	return 50, nil
}

type vipCall struct {
	PlayerID, Description, Expiration string
}

type MockVIPManager struct {
	Calls  []vipCall
	AddErr error
}

func (m *MockVIPManager) AddVip(ctx context.Context, playerID, description, expiration string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Calls = append(m.Calls, vipCall{playerID, description, expiration})
	return nil
}

// MockGate grants each key once until released
type MockGate struct {
	held   map[string]bool
	FailOn string
}

func (m *MockGate) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.held == nil {
		m.held = map[string]bool{}
	}
	if key == m.FailOn {
		return false, errors.New("redis unavailable")
	}
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *MockGate) Release(ctx context.Context, key string) error {
	delete(m.held, key)
	return nil
}
