package logic

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// MockPool hands out the same MockTx on every BeginTx
type MockPool struct {
	Tx       *MockTx
	BeginErr error
	Options  []pgx.TxOptions
}

func (m *MockPool) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	m.Options = append(m.Options, opts)
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	return m.Tx, nil
}

// MockTx implements the parts of pgx.Tx the aggregator uses
type MockTx struct {
	pgx.Tx
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	RolledBack   int
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockRows{}, nil
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{Err: pgx.ErrNoRows}
}

func (m *MockTx) Rollback(ctx context.Context) error {
	m.RolledBack++
	return nil
}

// MockRow scans Values into the destinations in order
type MockRow struct {
	Values []any
	Err    error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.Err != nil {
		return m.Err
	}
	return setDest(dest, m.Values)
}

// MockRows iterates over Data
type MockRows struct {
	pgx.Rows
	Data   [][]any
	idx    int
	Closed bool
}

func (m *MockRows) Next() bool {
	if m.idx >= len(m.Data) {
		return false
	}
	m.idx++
	return true
}

func (m *MockRows) Scan(dest ...any) error {
	return setDest(dest, m.Data[m.idx-1])
}

func (m *MockRows) Close()                        { m.Closed = true }
func (m *MockRows) Err() error                    { return nil }
func (m *MockRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func setDest(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		v := reflect.ValueOf(d).Elem()
		v.Set(reflect.ValueOf(values[i]).Convert(v.Type()))
	}
	return nil
}

// sqlContains reports whether sql mentions every fragment
func sqlContains(sql string, fragments ...string) bool {
	for _, f := range fragments {
		if !strings.Contains(sql, f) {
			return false
		}
	}
	return true
}

// MockRedis records SetNX and Del calls against an in-memory set
type MockRedis struct {
	Keys   map[string]time.Duration
	Fail   error
	DelLog []string
}

func (m *MockRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if m.Fail != nil {
		cmd.SetErr(m.Fail)
		return cmd
	}
	if m.Keys == nil {
		m.Keys = make(map[string]time.Duration)
	}
	if _, ok := m.Keys[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	m.Keys[key] = expiration
	cmd.SetVal(true)
	return cmd
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		m.DelLog = append(m.DelLog, k)
		if _, ok := m.Keys[k]; ok {
			delete(m.Keys, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}
