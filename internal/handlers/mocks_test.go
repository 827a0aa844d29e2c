package handlers

import (
	"context"
	"sync"

	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/models"
)

type MockIngestQueue struct {
	mu          sync.Mutex
	Events      []*models.LogEvent
	EnqueueFunc func(event *models.LogEvent) bool
	Depth       int
}

func (m *MockIngestQueue) Enqueue(event *models.LogEvent) bool {
	if m.EnqueueFunc != nil && !m.EnqueueFunc(event) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return true
}

func (m *MockIngestQueue) QueueDepth() int { return m.Depth }

type MockStatsRenderer struct {
	RenderFunc func(ctx context.Context, playerID, name string, tbl locale.Table) (string, error)
}

func (m *MockStatsRenderer) Render(ctx context.Context, playerID, name string, tbl locale.Table) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, playerID, name, tbl)
	}
	return name, nil
}

type MockTopsRenderer struct {
	RenderFunc func(ctx context.Context, tbl locale.Table) (string, error)
}

func (m *MockTopsRenderer) Render(ctx context.Context, tbl locale.Table) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, tbl)
	}
	return tbl.T("tops"), nil
}
