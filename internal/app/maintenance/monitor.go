package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	iauth "github.com/threadloom/threadloom/internal/auth"
	"github.com/threadloom/threadloom/pkg/logger"
	"github.com/threadloom/threadloom/pkg/metrics"
)

const defaultSchedule = "@every 5m"

// Monitor periodically reconciles the active-sessions gauge against the
// database. Session records are never deleted; revoked and expired rows stay
// behind as an audit trail, so the only background work is metric upkeep.
type Monitor struct {
	sessions *iauth.SessionService
	cron     *cron.Cron
	schedule string
	log      *zap.Logger
}

// Option customises the Monitor.
type Option func(*Monitor)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(m *Monitor) {
		if c != nil {
			m.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for gauge reconciliation.
func WithSchedule(spec string) Option {
	return func(m *Monitor) {
		if spec != "" {
			m.schedule = spec
		}
	}
}

// NewMonitor constructs a Monitor with sensible defaults.
func NewMonitor(sessions *iauth.SessionService, opts ...Option) *Monitor {
	monitor := &Monitor{
		sessions: sessions,
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(monitor)
	}

	if monitor.cron == nil {
		monitor.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return monitor
}

// Start registers the reconciliation job and launches the scheduler.
func (m *Monitor) Start() error {
	if m.sessions == nil {
		return nil
	}

	if _, err := m.cron.AddFunc(m.schedule, func() {
		if err := m.RunOnce(context.Background()); err != nil {
			m.log.Warn("session gauge refresh failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	m.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (m *Monitor) Stop() context.Context {
	if m.cron == nil {
		return context.Background()
	}
	return m.cron.Stop()
}

// RunOnce reconciles the gauge immediately. Used by tests and at start-up so
// the metric is accurate before the first tick.
func (m *Monitor) RunOnce(ctx context.Context) error {
	if m.sessions == nil {
		return nil
	}

	count, err := m.sessions.CountActive(ctx)
	if err != nil {
		return err
	}

	metrics.ActiveSessions.Set(float64(count))
	return nil
}
