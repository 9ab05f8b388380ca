// Package chartstate owns the single live chart. Render and Clear are the
// only ways to change it.
package chartstate

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/elocompare/internal/adapters/chart"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/pkg/logger"
	"github.com/okian/elocompare/pkg/metrics"
)

// Instance is a created chart.
type Instance interface {
	ID() string
	Title() string
	Series() []model.SeriesDescriptor
	Render(w io.Writer, format chart.Format) error
	Destroy() bool
}

// Factory creates chart instances.
type Factory interface {
	Create(series []model.SeriesDescriptor, title string) (Instance, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(series []model.SeriesDescriptor, title string) (Instance, error)

// Create calls fn.
func (fn FactoryFunc) Create(series []model.SeriesDescriptor, title string) (Instance, error) {
	return fn(series, title)
}

// GoChart adapts a go-chart factory.
func GoChart(f *chart.Factory) Factory {
	return FactoryFunc(func(series []model.SeriesDescriptor, title string) (Instance, error) {
		inst, err := f.Create(series, title)
		if err != nil {
			return nil, err
		}
		return inst, nil
	})
}

// View is a read-only description of the live chart.
type View struct {
	ID     string                   `json:"id"`
	Title  string                   `json:"title"`
	Series []model.SeriesDescriptor `json:"series"`
	Since  time.Time                `json:"since"`
}

// Manager holds at most one live chart instance.
type Manager struct {
	mu      sync.Mutex
	factory Factory
	current Instance
	since   time.Time
	logger  logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager with no live chart.
func NewManager(f Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: f,
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Render replaces the live chart. The previous instance is destroyed before
// the new one is created; if creation fails no chart is live.
func (m *Manager) Render(ctx context.Context, series []model.SeriesDescriptor, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked(ctx)

	inst, err := m.factory.Create(series, title)
	if err != nil {
		m.logger.Error(ctx, "error creating chart", logger.String("title", title), logger.Error(err))
		return fmt.Errorf("create chart: %w", err)
	}
	m.current = inst
	m.since = time.Now()
	metrics.RecordChartCreated()
	m.logger.Debug(ctx, "chart created",
		logger.String("chart_id", inst.ID()),
		logger.String("title", title),
		logger.Int("series", len(series)),
	)
	return nil
}

// Clear destroys the live chart. Without one it does nothing.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked(ctx)
}

func (m *Manager) releaseLocked(ctx context.Context) {
	if m.current == nil {
		return
	}
	id := m.current.ID()
	if m.current.Destroy() {
		metrics.RecordChartDestroyed()
	}
	m.current = nil
	m.since = time.Time{}
	m.logger.Debug(ctx, "chart destroyed", logger.String("chart_id", id))
}

// Current describes the live chart.
func (m *Manager) Current() (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return View{}, false
	}
	return View{
		ID:     m.current.ID(),
		Title:  m.current.Title(),
		Series: m.current.Series(),
		Since:  m.since,
	}, true
}

// WriteImage renders the live chart to w. It reports false when no chart
// is live.
func (m *Manager) WriteImage(w io.Writer, format chart.Format) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false, nil
	}
	return true, m.current.Render(w, format)
}
