// Command auditd runs the tamper-evident audit logging daemon: in-process
// capture, batching, dual persistence to the Indexed Store and Chain Log,
// scheduled integrity monitoring, and retention enforcement, fronted by a
// small operational HTTP surface. Business logic lives in pkg/audit and
// friends; main wires it together and owns the process lifecycle.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"auditlog/internal/platform/config"
	"auditlog/internal/platform/httpserver"
	"auditlog/internal/platform/logger"
	"auditlog/internal/platform/metrics"
	"auditlog/internal/platform/redis"
	"auditlog/migrations"
	"auditlog/pkg/audit"
	"auditlog/pkg/audit/chainlog"
	"auditlog/pkg/audit/integrity"
	"auditlog/pkg/audit/retention"
	"auditlog/pkg/audit/retention/archive"
	archivekafka "auditlog/pkg/audit/retention/archive/kafka"
	"auditlog/pkg/audit/retention/archive/noop"
	"auditlog/pkg/audit/retention/holdcache"
	"auditlog/pkg/audit/store/memory"
	"auditlog/pkg/audit/store/postgres"
)

// eventStore is the union of the Indexed Store's write surface (as seen
// by the persister) and its read/delete surface (as seen by the retention
// engine); both pkg/audit/store/postgres and pkg/audit/store/memory
// satisfy it.
type eventStore interface {
	audit.Store
	retention.Store
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("auditd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mtr := metrics.New()

	store, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	writer, err := chainlog.Open(chainlog.Config{
		Dir:         cfg.ChainLog.LogDir,
		FilePrefix:  cfg.ChainLog.FilePrefix,
		MaxFileSize: cfg.ChainLog.MaxFileSize,
		SyncOnWrite: cfg.ChainLog.SyncOnWrite,
	})
	if err != nil {
		return err
	}
	defer writer.Close()

	monitor := integrity.NewMonitor(integrity.Config{
		CheckInterval:      cfg.Integrity.CheckInterval,
		VerificationWindow: cfg.Integrity.VerificationWindow,
		AlertOnIssues:      cfg.Integrity.AlertOnIssues,
	}, writer, integrity.NewSlogSink(log))
	monitor.OnReport = func(report integrity.Report) {
		mtr.ObserveIntegrityReport(len(report.CorruptedEventIDs), len(report.BrokenAtSequences))
		mtr.IntegrityLastCheckUnix.Set(float64(time.Now().Unix()))
	}
	writer.OnAppend = monitor.Observe

	capture := audit.NewCapture(audit.CaptureConfig{BufferSize: cfg.Capture.BufferSize, Logger: log})
	batcher := audit.NewBatcher(audit.BatcherConfig{MaxSize: cfg.Batcher.MaxBatchSize, MaxAge: cfg.Batcher.MaxBatchAge}, capture.Events())
	persister := audit.NewPersister(store, chainlog.Appender{Writer: writer}, log)

	holdProvider, closeHolds, err := openHoldProvider(cfg, log)
	if err != nil {
		return err
	}
	if closeHolds != nil {
		defer closeHolds()
	}

	archiveSink, closeArchive, err := openArchiveSink(cfg)
	if err != nil {
		return err
	}
	if closeArchive != nil {
		defer closeArchive()
	}

	policy := retentionPolicy(cfg)
	engine := retention.NewEngine(retention.EngineConfig{
		BatchSize:           cfg.Retention.BatchSize,
		DryRun:              cfg.Retention.DryRun,
		ArchiveBeforeDelete: cfg.Retention.ArchiveBeforeDelete,
		EnforcementInterval: cfg.Retention.EnforcementInterval,
	}, store, policy, holdProvider, archiveSink, log)
	engine.OnClassification = func(c retention.Classification) {
		mtr.ObserveClassification(c.Deleted, c.Held, c.Skipped)
	}

	srv := httpserver.New(cfg.Server.Addr, monitor)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		batcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		persister.Run(gctx, batcher.Batches())
		return nil
	})
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		engine.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("auditd listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		capture.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore constructs the Indexed Store: Postgres when a DSN is
// configured (running migrations first), memory otherwise for local runs
// and tests.
func openStore(cfg *config.Config) (eventStore, *sql.DB, error) {
	if cfg.Store.DSN == "" {
		return memory.New(), nil, nil
	}
	db, err := sql.Open("postgres", cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.New(db), db, nil
}

// openHoldProvider wires the Redis-backed legal hold cache when holds are
// enabled and Redis is configured, falling back to an always-empty hold
// set otherwise.
func openHoldProvider(cfg *config.Config, log *slog.Logger) (retention.HoldProvider, func(), error) {
	if !cfg.Retention.EnableHolds || cfg.Redis.URL == "" {
		return retention.StaticHolds{}, nil, nil
	}
	client, err := redis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("retention holds enabled but redis not configured, proceeding without holds")
		return retention.StaticHolds{}, nil, nil
	}
	cache := holdcache.New(client.Client, "", 0)
	return cache, func() { client.Close() }, nil
}

// openArchiveSink wires the Kafka archive sink when configured, otherwise
// a no-op sink. The no-op sink reports every record as archived, so with
// Kafka disabled retention deletes rows without archiving them, whether
// or not ArchiveBeforeDelete is set.
func openArchiveSink(cfg *config.Config) (archive.Sink, func(), error) {
	if !cfg.Kafka.Enabled {
		return noop.Sink{}, nil, nil
	}
	sink, err := archivekafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	return sink, sink.Close, nil
}

func retentionPolicy(cfg *config.Config) retention.Policy {
	overrides := make(map[audit.Category]retention.Duration, len(cfg.Retention.CategoryOverrides))
	for category, span := range cfg.Retention.CategoryOverrides {
		overrides[audit.Category(category)] = retention.For(span)
	}
	return retention.Policy{
		Default:            retention.For(cfg.Retention.DefaultRetention),
		CategoryOverrides:  overrides,
		HighMultiplier:     cfg.Retention.HighMultiplier,
		CriticalMultiplier: cfg.Retention.CriticalMultiplier,
	}
}

