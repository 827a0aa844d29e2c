package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/hll-crcon/stats-hooks/internal/hooks"
	"github.com/hll-crcon/stats-hooks/internal/models"
)

// MockDispatcher returns one outcome per event
type MockDispatcher struct {
	mu           sync.Mutex
	Events       []*models.LogEvent
	DispatchFunc func(ctx context.Context, ev *models.LogEvent) []hooks.Outcome
}

func (m *MockDispatcher) Dispatch(ctx context.Context, ev *models.LogEvent) []hooks.Outcome {
	m.mu.Lock()
	m.Events = append(m.Events, ev)
	m.mu.Unlock()
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, ev)
	}
	return []hooks.Outcome{{Hook: "all_time_stats", Trigger: ev.Kind(), PlayerID: ev.PlayerID1, Recipients: 1}}
}

func (m *MockDispatcher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn
	mu      sync.Mutex
	Batches []*MockBatch
	Queries []string
	Fail    bool
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return nil, errors.New("clickhouse unavailable")
	}
	b := &MockBatch{}
	m.Batches = append(m.Batches, b)
	m.Queries = append(m.Queries, query)
	return b, nil
}

func (m *MockClickHouseConn) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows [][]any
	for _, b := range m.Batches {
		if b.sent {
			rows = append(rows, b.rows...)
		}
	}
	return rows
}

type MockBatch struct {
	driver.Batch
	rows [][]any
	sent bool
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.rows = append(m.rows, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.sent = true
	return nil
}
