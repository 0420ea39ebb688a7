// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/pdiddy/transparency-engine/internal/facts"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

// StatsSource is the slice of the facts store the monitor reads.
type StatsSource interface {
	ReadStats(ctx context.Context) (facts.Stats, error)
}

// Alert is a threshold violation observed during a monitor tick. Alerts
// accumulate until read; the ring keeps the most recent maxAlerts.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

const maxAlerts = 100

// Status is a point-in-time snapshot of the monitored values.
type Status struct {
	Score             float64   `json:"score"`
	Trend             int       `json:"trend"`
	VerifiedFacts     int       `json:"verified_facts"`
	OpenSuspicious    int       `json:"open_suspicious"`
	AverageConfidence float64   `json:"average_confidence"`
	LastTick          time.Time `json:"last_tick"`
	OpenAlerts        int       `json:"open_alerts"`
}

// Monitor periodically recomputes the data-quality picture from the facts
// store and the aggregator history, and raises alerts when configured
// thresholds are crossed. All state lives on the instance (R5.1); ticks are
// scheduled either by Start or by calling Tick directly.
type Monitor struct {
	agg   *Aggregator
	stats StatsSource
	cfg   types.QualityConfig
	log   *slog.Logger

	mu     sync.Mutex
	alerts []Alert
	status Status

	cron *cron.Cron
}

// NewMonitor returns a Monitor. stats may be nil; fact-store thresholds are
// then skipped.
func NewMonitor(agg *Aggregator, stats StatsSource, cfg types.QualityConfig, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{agg: agg, stats: stats, cfg: cfg, log: log}
}

// Start schedules Tick on the configured cron expression (seconds field
// included) until ctx is canceled or Stop is called (R5.2).
func (m *Monitor) Start(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(m.cfg.Schedule, func() { m.Tick(ctx) })
	if err != nil {
		return fmt.Errorf("scheduling quality monitor: %w", err)
	}
	m.cron = c
	c.Start()
	m.log.Info("quality monitor started", "schedule", m.cfg.Schedule)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()
	return nil
}

// Stop halts the schedule. Pending tick functions finish.
func (m *Monitor) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
		m.log.Info("quality monitor stopped")
	}
}

// Tick recomputes the status snapshot and raises threshold alerts (R5.3).
// A facts-store failure is logged and skips only the store-derived checks.
func (m *Monitor) Tick(ctx context.Context) {
	summary := m.agg.Summarize()

	status := Status{
		Score:    summary.AverageScore,
		Trend:    summary.Trend,
		LastTick: time.Now(),
	}

	if summary.Checks > 0 && summary.AverageScore < float64(m.cfg.MinScore) {
		m.raise("data_quality", fmt.Sprintf(
			"Datenqualität unter Schwellenwert: %.1f%%", summary.AverageScore), "warning")
	}

	if m.stats != nil {
		stats, err := m.stats.ReadStats(ctx)
		if err != nil {
			m.log.Warn("reading facts statistics failed", "error", err)
		} else {
			status.VerifiedFacts = stats.VerifiedFacts
			status.OpenSuspicious = stats.OpenSuspicious
			status.AverageConfidence = stats.AverageConfidence

			if stats.VerifiedFacts > 0 && stats.AverageConfidence < m.cfg.MinConfidence {
				m.raise("fact_confidence", fmt.Sprintf(
					"Durchschnittliche Fakten-Konfidenz unter Schwellenwert: %.2f",
					stats.AverageConfidence), "warning")
			}
			if stats.OpenSuspicious > stats.VerifiedFacts && stats.OpenSuspicious > 0 {
				m.raise("suspicious_backlog", fmt.Sprintf(
					"Mehr offene verdächtige Einträge (%d) als verifizierte Fakten (%d)",
					stats.OpenSuspicious, stats.VerifiedFacts), "critical")
			}
		}
	}

	m.mu.Lock()
	status.OpenAlerts = len(m.alerts)
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) raise(alertType, message, severity string) {
	alert := Alert{
		ID:        uuid.NewString(),
		Type:      alertType,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now(),
	}

	m.mu.Lock()
	m.alerts = append(m.alerts, alert)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[len(m.alerts)-maxAlerts:]
	}
	m.mu.Unlock()

	m.log.Warn("quality alert raised", "type", alertType, "message", message, "severity", severity)
}

// Alerts returns a copy of the retained alerts, oldest first.
func (m *Monitor) Alerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Status returns the snapshot from the most recent tick.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status
	s.OpenAlerts = len(m.alerts)
	return s
}
