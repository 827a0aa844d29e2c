// Package worker runs hooks off the request path. Ingested events go through
// a bounded queue to a fixed set of workers; the outcome of every hook run is
// audited to ClickHouse in batches.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/hll-crcon/stats-hooks/internal/hooks"
	"github.com/hll-crcon/stats-hooks/internal/models"
)

// Prometheus metrics
var (
	eventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hll_hooks_events_ingested_total",
		Help: "Total number of events accepted into the queue",
	})

	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hll_hooks_events_processed_total",
		Help: "Total number of events dispatched by workers",
	})

	deliveriesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hll_hooks_deliveries_audit_failed_total",
		Help: "Total number of delivery records that could not be written",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hll_hooks_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hll_hooks_batch_insert_duration_seconds",
		Help:    "Duration of delivery batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	eventsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hll_hooks_events_load_shed_total",
		Help: "Total number of events dropped due to load shedding",
	})
)

const insertDeliveries = `
	INSERT INTO hll_hooks.deliveries (
		id, job_id, timestamp, server, hook, trigger, player_id, platform,
		recipients, message_length, vip_granted, vip_already, duration_ms,
		status, error_kind, error
	)
`

// Dispatcher runs the hooks for one event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *models.LogEvent) []hooks.Outcome
}

// Job represents a unit of work for the worker pool
type Job struct {
	ID       uuid.UUID
	Event    *models.LogEvent
	Received time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	// JobTimeout bounds one event across all hooks.
	JobTimeout time.Duration
	Dispatcher Dispatcher
	// ClickHouse is optional; without it outcomes are only logged.
	ClickHouse driver.Conn
	Logger     *zap.Logger
}

// Pool manages a pool of workers for async hook dispatch
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
		"audit", p.config.ClickHouse != nil,
	)
}

// Stop drains the queue, flushes pending deliveries and waits for workers.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds an event to the queue without blocking. It returns false when
// the queue is full or the pool is stopped.
func (p *Pool) Enqueue(event *models.LogEvent) (ok bool) {
	job := Job{
		ID:       uuid.New(),
		Event:    event,
		Received: time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue event (pool stopped)", "error", r)
			eventsLoadShed.Inc()
			ok = false
		}
	}()

	select {
	case p.jobQueue <- job:
		eventsIngested.Inc()
		return true
	default:
		p.logger.Warnw("Worker queue full, dropping event", "action", event.Action, "job_id", job.ID)
		eventsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker dispatches jobs and batches their deliveries
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Delivery, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := p.writeDeliveries(batch); err != nil {
			p.logger.Errorw("Delivery batch insert failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			deliveriesFailed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())
		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, p.process(job)...)
			eventsProcessed.Inc()
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// process runs the hooks of one job. Hooks keep running after Stop so queued
// events are still answered.
func (p *Pool) process(job Job) []Delivery {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), p.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorw("Hook dispatch panic", "error", r, "job_id", job.ID, "action", job.Event.Action)
		}
	}()

	outcomes := p.config.Dispatcher.Dispatch(ctx, job.Event)
	deliveries := make([]Delivery, 0, len(outcomes))
	for _, o := range outcomes {
		deliveries = append(deliveries, newDelivery(job, o))
	}
	return deliveries
}

func (p *Pool) writeDeliveries(batch []Delivery) error {
	if p.config.ClickHouse == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, insertDeliveries)
	if err != nil {
		return err
	}

	for _, d := range batch {
		err := chBatch.Append(
			d.ID,
			d.JobID,
			d.Timestamp,
			d.Server,
			d.Hook,
			d.Trigger,
			d.PlayerID,
			d.Platform,
			d.Recipients,
			d.MessageLength,
			d.VIPGranted,
			d.VIPAlready,
			d.DurationMs,
			d.Status,
			d.ErrorKind,
			d.Error,
		)
		if err != nil {
			p.logger.Warnw("Failed to append delivery to batch", "error", err, "hook", d.Hook)
			continue
		}
	}

	return chBatch.Send()
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
