// Package history fetches rating histories and reports every failure to the
// user as soon as it happens.
package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/elocompare/internal/adapters/eloapi"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/pkg/logger"
	"github.com/okian/elocompare/pkg/metrics"
)

// Source retrieves one entity's history.
type Source interface {
	History(ctx context.Context, entityID string) (*model.HistoryResult, error)
}

// Notifier surfaces alerts to the user.
type Notifier interface {
	Alert(ctx context.Context, text string)
}

// Fetcher wraps a Source with error classification and user alerts.
type Fetcher struct {
	source   Source
	notifier Notifier
	logger   logger.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(src Source, n Notifier, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:   src,
		notifier: n,
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the history of entityID, or nil when the id is blank or the
// fetch failed. Failures have already been alerted and logged when Fetch
// returns. A result without points is not a failure.
func (f *Fetcher) Fetch(ctx context.Context, entityID string) *model.HistoryResult {
	id := strings.TrimSpace(entityID)
	if id == "" {
		metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeSkipped, 0)
		return nil
	}

	start := time.Now()
	res, err := f.source.History(ctx, id)
	latency := float64(time.Since(start).Milliseconds())

	if err == nil && res == nil {
		err = &eloapi.APIError{EntityID: id, StatusCode: http.StatusOK, Message: "empty history response"}
	}
	if err != nil {
		f.report(ctx, id, err, latency)
		return nil
	}

	if res.IsEmpty() {
		metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeEmpty, latency)
	} else {
		metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeOK, latency)
	}
	f.logger.Debug(ctx, "history fetched",
		logger.String("entity_id", id),
		logger.Int("points", len(res.Points)),
	)
	return res
}

func (f *Fetcher) report(ctx context.Context, id string, err error, latency float64) {
	var apiErr *eloapi.APIError
	switch {
	case errors.As(err, &apiErr):
		metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeAPIError, latency)
		f.logger.Error(ctx, "api error fetching history",
			logger.String("entity_id", id),
			logger.Int("status", apiErr.StatusCode),
			logger.Error(err),
		)
		f.notifier.Alert(ctx, APIErrorMessage(id, apiErr.Message))
	default:
		// Anything that is not an API error means no usable response came back.
		metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeNetworkError, latency)
		f.logger.Error(ctx, "network error fetching history",
			logger.String("entity_id", id),
			logger.Error(err),
		)
		f.notifier.Alert(ctx, NetworkErrorMessage(id))
	}
}

// NetworkErrorMessage is the alert text for a transport failure.
func NetworkErrorMessage(id string) string {
	return fmt.Sprintf("Network error for entity ID %s.", id)
}

// APIErrorMessage is the alert text for a failed response.
func APIErrorMessage(id, msg string) string {
	return fmt.Sprintf("Error for entity ID %s: %s", id, msg)
}

// Future is an in-flight fetch.
type Future struct {
	done chan struct{}
	res  *model.HistoryResult
}

// Start issues the fetch on its own goroutine. The fetch is never cancelled
// by a later Start; it ends when the source returns.
func (f *Fetcher) Start(ctx context.Context, entityID string) *Future {
	fut := &Future{done: make(chan struct{})}
	go func() {
		defer close(fut.done)
		fut.res = f.Fetch(ctx, entityID)
	}()
	return fut
}

// Wait blocks until the fetch resolves and returns its result.
func (fu *Future) Wait() *model.HistoryResult {
	<-fu.done
	return fu.res
}

// Done is closed once the fetch resolves.
func (fu *Future) Done() <-chan struct{} {
	return fu.done
}

// FetchAll starts one fetch per slot and joins them. Blank slots resolve to
// nil without a network call.
func (f *Fetcher) FetchAll(ctx context.Context, ids [model.SlotCount]string) [model.SlotCount]*model.HistoryResult {
	var futures [model.SlotCount]*Future
	for i, id := range ids {
		futures[i] = f.Start(ctx, id)
	}
	var out [model.SlotCount]*model.HistoryResult
	for i, fut := range futures {
		out[i] = fut.Wait()
	}
	return out
}
