// Command hooks runs the CRCON stats hooks sidecar: it receives the host's
// structured log lines, answers the stats and tops chat commands and
// broadcasts the leaderboard at match end.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hll-crcon/stats-hooks/internal/config"
	"github.com/hll-crcon/stats-hooks/internal/handlers"
	"github.com/hll-crcon/stats-hooks/internal/hooks"
	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/logic"
	"github.com/hll-crcon/stats-hooks/internal/rcon"
	"github.com/hll-crcon/stats-hooks/internal/worker"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file merged into the environment")
	port := flag.Int("port", 0, "listen port (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Production() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PostgreSQL (host database, read-only usage)
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()

	checks := map[string]handlers.Pinger{"postgres": pg}

	// Redis (cooldowns and VIP locks), optional
	var gate logic.Gate = logic.NopGate{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		gate = logic.NewRedisGate(rdb, "hll_hooks:")
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		sugar.Warn("REDIS_URL not set, command cooldowns and VIP locks are disabled")
	}

	// ClickHouse (delivery audit), optional
	var ch driver.Conn
	if cfg.ClickHouseURL != "" {
		opts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
		if err != nil {
			return fmt.Errorf("clickhouse: %w", err)
		}
		ch, err = clickhouse.Open(opts)
		if err != nil {
			return fmt.Errorf("clickhouse: %w", err)
		}
		defer ch.Close()
		checks["clickhouse"] = ch
	}

	catalog, err := locale.LoadFile(cfg.LocaleFile)
	if err != nil {
		return err
	}
	tbl := catalog.Table(cfg.Lang)

	style := logic.StyleMonths
	if cfg.DurationWeeks {
		style = logic.StyleWeeks
	}

	host := rcon.NewClient(rcon.Config{
		BaseURL: cfg.CRCONURL,
		APIKey:  cfg.CRCONAPIKey,
		Timeout: cfg.CRCONTimeout,
	})

	allTimeStats := hooks.NewAllTimeStats(hooks.AllTimeStatsConfig{
		Commands:         cfg.StatsCommands,
		DisplayOnConnect: cfg.DisplayOnConnect,
		Cooldown:         cfg.CommandCooldown,
		Style:            style,
	}, host, logic.NewStatsAggregator(pg), host, gate, tbl)

	tops := hooks.NewTops(hooks.TopsConfig{
		Commands:   cfg.TopsCommands,
		OnMatchEnd: cfg.TopsOnMatchEnd,
		Cooldown:   cfg.CommandCooldown,
		Categories: logic.DefaultCategories(cfg.TopPlayerLimit, cfg.TopSquadLimit),
		Weights: logic.Weights{
			OffenseDefenseRatio: cfg.OffenseDefenseRatio,
			CombatSupportRatio:  cfg.CombatSupportRatio,
		},
		VIP: logic.VIPPolicy{
			Enabled:   cfg.VIPEnabled,
			Winners:   cfg.VIPWinners,
			Hours:     cfg.VIPHours,
			SeedLimit: cfg.VIPSeedLimit,
			Note:      cfg.VIPNote,
		},
	}, host, host, host, gate, tbl)

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		JobTimeout:    cfg.JobTimeout,
		Dispatcher:    hooks.NewDispatcher(sugar, allTimeStats, tops),
		ClickHouse:    ch,
		Logger:        logger,
	})
	pool.Start(ctx)

	h := handlers.New(handlers.Config{
		WorkerPool:   pool,
		Checks:       checks,
		Logger:       logger,
		HookToken:    cfg.HookToken,
		AllTimeStats: allTimeStats,
		Tops:         tops,
		Locales:      catalog,
		DefaultLang:  cfg.Lang,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		sugar.Infow("Hooks service listening", "port", cfg.Port, "env", cfg.Env, "lang", cfg.Lang.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		sugar.Info("Shutting down...")
	case err := <-serveErr:
		pool.Stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("HTTP shutdown failed", "error", err)
	}
	pool.Stop()
	return nil
}
