// Package app wires the roster, history fetches, composition and the chart
// together behind the user actions view, clear and select.
package app

import (
	"context"
	"fmt"

	"github.com/okian/elocompare/internal/adapters/selection"
	"github.com/okian/elocompare/internal/chartstate"
	"github.com/okian/elocompare/internal/domain/compose"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/pkg/logger"
	"github.com/okian/elocompare/pkg/metrics"
)

// View outcomes, also used as metric labels.
const (
	StatusRendered     = "rendered"
	StatusNoSelection  = "no_selection"
	StatusDuplicate    = "duplicate_selection"
	StatusEmpty        = "empty"
	StatusRenderFailed = "render_failed"
)

// Selector is one selection control.
type Selector interface {
	Value() string
	SetValue(id string)
	Notify(ctx context.Context)
	Options() []model.Entity
	Snapshot() selection.Snapshot
}

// RosterLoader fills the selectors.
type RosterLoader interface {
	Load(ctx context.Context) (int, error)
}

// HistoryFetcher fetches every slot concurrently and joins. Failed or blank
// slots come back nil; failures are already reported to the user.
type HistoryFetcher interface {
	FetchAll(ctx context.Context, ids [model.SlotCount]string) [model.SlotCount]*model.HistoryResult
}

// Charts owns the live chart.
type Charts interface {
	Render(ctx context.Context, series []model.SeriesDescriptor, title string) error
	Clear(ctx context.Context)
	Current() (chartstate.View, bool)
}

// Notifier surfaces messages to the user.
type Notifier interface {
	Alert(ctx context.Context, text string)
	Info(ctx context.Context, text string)
}

// Outcome summarizes a view action.
type Outcome struct {
	Status   string `json:"status"`
	Title    string `json:"title,omitempty"`
	Datasets int    `json:"datasets"`
	ChartID  string `json:"chart_id,omitempty"`
}

// ViewRequest is a view that passed its preconditions.
type ViewRequest struct {
	IDs [model.SlotCount]string
}

// State is a snapshot for the UI.
type State struct {
	Selection model.SelectionState `json:"selection"`
	Options   []model.Entity       `json:"options"`
	// Controls carries each selector's snapshot; Version moves on every
	// notification, so a client holding an older version must resync.
	Controls [model.SlotCount]selection.Snapshot `json:"controls"`
	Chart    *chartstate.View                    `json:"chart,omitempty"`
}

// Controller handles user actions. Its methods are not meant to be called
// concurrently; Service serializes them.
type Controller struct {
	slots    [model.SlotCount]Selector
	roster   RosterLoader
	fetcher  HistoryFetcher
	composer *compose.Composer
	charts   Charts
	notifier Notifier
	logger   logger.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithComposer replaces the default composer.
func WithComposer(cp *compose.Composer) Option {
	return func(c *Controller) {
		if cp != nil {
			c.composer = cp
		}
	}
}

// NewController creates a Controller.
func NewController(
	primary, secondary Selector,
	roster RosterLoader,
	fetcher HistoryFetcher,
	charts Charts,
	notifier Notifier,
	opts ...Option,
) *Controller {
	c := &Controller{
		slots:    [model.SlotCount]Selector{primary, secondary},
		roster:   roster,
		fetcher:  fetcher,
		composer: compose.New(),
		charts:   charts,
		notifier: notifier,
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init loads the roster. A failure is logged and leaves the selectors
// empty; the controller stays usable.
func (c *Controller) Init(ctx context.Context) int {
	n, err := c.roster.Load(ctx)
	if err != nil {
		c.logger.Warn(ctx, "starting without roster", logger.Error(err))
		return 0
	}
	return n
}

// Select sets the value of slot and notifies its selector. A blank id
// clears the slot. Ids are not checked against the roster.
func (c *Controller) Select(ctx context.Context, slot model.Slot, id string) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	s := c.slots[slot]
	s.SetValue(id)
	s.Notify(ctx)
	return nil
}

// Selection reads both selectors.
func (c *Controller) Selection() model.SelectionState {
	return model.SelectionState{
		Primary:   c.slots[model.SlotPrimary].Value(),
		Secondary: c.slots[model.SlotSecondary].Value(),
	}
}

// View runs a whole view action: BeginView, FetchAll and FinishView.
func (c *Controller) View(ctx context.Context) (Outcome, error) {
	req, out, err := c.BeginView(ctx)
	if err != nil {
		return out, err
	}
	return c.FinishView(ctx, req, c.FetchAll(ctx, req))
}

// BeginView checks the preconditions of a view. On violation the user is
// told, nothing is fetched, and the chart is left alone.
func (c *Controller) BeginView(ctx context.Context) (ViewRequest, Outcome, error) {
	sel := c.Selection()
	switch {
	case sel.Empty():
		return ViewRequest{}, c.reject(ctx, StatusNoSelection, MsgNoSelection), ErrNoSelection
	case sel.Duplicate():
		return ViewRequest{}, c.reject(ctx, StatusDuplicate, MsgDuplicateSelection), ErrDuplicateSelection
	}
	return ViewRequest{IDs: sel.IDs()}, Outcome{}, nil
}

func (c *Controller) reject(ctx context.Context, status, msg string) Outcome {
	metrics.RecordViewAction(status)
	c.notifier.Alert(ctx, msg)
	return Outcome{Status: status}
}

// FetchAll fetches the histories of a view. It touches no controller state
// and may run off the action loop.
func (c *Controller) FetchAll(ctx context.Context, req ViewRequest) [model.SlotCount]*model.HistoryResult {
	return c.fetcher.FetchAll(ctx, req.IDs)
}

// FinishView composes fetched histories and replaces the chart.
func (c *Controller) FinishView(ctx context.Context, _ ViewRequest, results [model.SlotCount]*model.HistoryResult) (Outcome, error) {
	comp := c.composer.Compose(results)
	for _, name := range comp.Empty {
		c.notifier.Info(ctx, EmptyHistoryMessage(name))
	}

	if comp.IsEmpty() {
		metrics.RecordViewAction(StatusEmpty)
		c.notifier.Alert(ctx, MsgEmptyComposition)
		return Outcome{Status: StatusEmpty, Title: comp.Title}, ErrEmptyComposition
	}

	if err := c.charts.Render(ctx, comp.Series, comp.Title); err != nil {
		metrics.RecordViewAction(StatusRenderFailed)
		c.logger.Error(ctx, "error rendering chart", logger.Error(err))
		c.notifier.Alert(ctx, MsgRenderFailed)
		return Outcome{Status: StatusRenderFailed, Title: comp.Title}, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	metrics.RecordViewAction(StatusRendered)
	out := Outcome{Status: StatusRendered, Title: comp.Title, Datasets: len(comp.Series)}
	if v, ok := c.charts.Current(); ok {
		out.ChartID = v.ID
	}
	c.logger.Info(ctx, "chart rendered",
		logger.String("title", out.Title),
		logger.Int("datasets", out.Datasets),
	)
	return out, nil
}

// Clear destroys the chart and empties both selectors.
func (c *Controller) Clear(ctx context.Context) {
	c.charts.Clear(ctx)
	for _, s := range c.slots {
		s.SetValue("")
	}
	for _, s := range c.slots {
		s.Notify(ctx)
	}
	metrics.RecordClearAction()
}

// State returns the selection, the options and the live chart.
func (c *Controller) State() State {
	st := State{
		Selection: c.Selection(),
		Options:   c.slots[model.SlotPrimary].Options(),
	}
	for i, s := range c.slots {
		st.Controls[i] = s.Snapshot()
	}
	if v, ok := c.charts.Current(); ok {
		st.Chart = &v
	}
	return st
}

// EmptyHistoryMessage is the notice for an entity without history.
func EmptyHistoryMessage(name string) string {
	return fmt.Sprintf("No ELO history found for %s. They might be new or have no recorded fights yet.", name)
}
