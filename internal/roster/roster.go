// Package roster loads the selectable entities once at startup and fills
// the selection controls with them.
package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/elocompare/internal/adapters/eloapi"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/pkg/logger"
	"github.com/okian/elocompare/pkg/metrics"
)

// Source lists the roster.
type Source interface {
	Entities(ctx context.Context) ([]model.Entity, error)
}

// Control receives roster options.
type Control interface {
	Append(entities ...model.Entity)
	Notify(ctx context.Context)
}

// Loader populates controls from a Source.
type Loader struct {
	source   Source
	controls []Control
	logger   logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader creates a Loader that fills every given control.
func NewLoader(src Source, controls []Control, opts ...Option) *Loader {
	ld := &Loader{
		source:   src,
		controls: controls,
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load fetches the roster, appends it to every control and notifies them.
// On failure the controls are left untouched and the error is logged and
// returned; callers treat it as non-fatal.
func (ld *Loader) Load(ctx context.Context) (int, error) {
	start := time.Now()
	entities, err := ld.source.Entities(ctx)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordFetch(metrics.KindRoster, outcome(err), latency)
		ld.logger.Error(ctx, "error loading roster", logger.Error(err))
		return 0, fmt.Errorf("load roster: %w", err)
	}
	metrics.RecordFetch(metrics.KindRoster, metrics.OutcomeOK, latency)

	for _, c := range ld.controls {
		c.Append(entities...)
	}
	for _, c := range ld.controls {
		c.Notify(ctx)
	}

	metrics.UpdateRosterSize(len(entities))
	ld.logger.Info(ctx, "roster loaded", logger.Int("count", len(entities)))
	return len(entities), nil
}

func outcome(err error) string {
	if errors.Is(err, eloapi.ErrNetwork) {
		return metrics.OutcomeNetworkError
	}
	return metrics.OutcomeAPIError
}
