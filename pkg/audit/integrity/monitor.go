package integrity

import (
	"context"
	"sync"
	"time"

	"auditlog/pkg/audit/chainlog"
)

// Config controls the monitoring task's cadence and scope.
type Config struct {
	CheckInterval      time.Duration
	VerificationWindow int // 0 means verify_full on every tick
	AlertOnIssues      bool
}

func (c Config) withDefaults() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5 * time.Minute
	}
	return c
}

// Monitor runs the scheduled tamper-evidence check: verify_full, or a
// bounded scan over the most recently observed entries when
// VerificationWindow is set. Appenders feed it via Observe so the windowed
// path never re-reads the chain log from disk.
type Monitor struct {
	cfg   Config
	chain Chain
	sink  AlertSink
	window *recentWindow

	// OnReport, when set, is called after every completed pass with the
	// resulting report, for metrics wiring.
	OnReport func(Report)

	mu         sync.Mutex
	lastReport Report
	haveReport bool
}

// NewMonitor builds a Monitor over chain, alerting through sink.
func NewMonitor(cfg Config, chain Chain, sink AlertSink) *Monitor {
	cfg = cfg.withDefaults()
	m := &Monitor{cfg: cfg, chain: chain, sink: sink}
	if cfg.VerificationWindow > 0 {
		m.window = newRecentWindow(cfg.VerificationWindow)
	}
	return m
}

// Observe records a freshly appended entry in the bounded verification
// window. It is a no-op when the monitor is configured for full scans.
func (m *Monitor) Observe(entry chainlog.Entry) {
	if m.window != nil {
		m.window.Push(entry)
	}
}

// Run ticks at CheckInterval until ctx is cancelled, performing one
// verification pass per tick and alerting on any issue found. It exits
// after the in-flight pass completes, per the shutdown contract that lets
// the monitor finish its current scan bounce before stopping.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			report, err := m.tick(ctx)
			if err != nil {
				continue
			}
			m.mu.Lock()
			m.lastReport = report
			m.haveReport = true
			m.mu.Unlock()

			if m.OnReport != nil {
				m.OnReport(report)
			}
			if m.cfg.AlertOnIssues && !report.Valid() {
				for _, issue := range issuesFromReport(report) {
					m.sink.Alert(ctx, issue)
				}
			}
		}
	}
}

// LastReport returns the most recently completed verification pass, if
// any has run yet.
func (m *Monitor) LastReport() (Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReport, m.haveReport
}

func (m *Monitor) tick(ctx context.Context) (Report, error) {
	if m.window != nil {
		return VerifyChainSegment(m.window.Snapshot()), nil
	}
	return VerifyFull(ctx, m.chain)
}
