package app_test

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/okian/elocompare/internal/adapters/chart"
	"github.com/okian/elocompare/internal/adapters/eloapi"
	"github.com/okian/elocompare/internal/adapters/notify"
	"github.com/okian/elocompare/internal/adapters/selection"
	"github.com/okian/elocompare/internal/app"
	"github.com/okian/elocompare/internal/chartstate"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/internal/history"
	"github.com/okian/elocompare/internal/roster"
)

// ratingSource serves a fixed roster and histories. Unknown ids get the
// service's 404 answer. Fetches of ids with a gate block until it closes.
type ratingSource struct {
	mu        sync.Mutex
	entities  []model.Entity
	histories map[string]*model.HistoryResult
	gates     map[string]chan struct{}
	calls     []string
}

func newRatingSource() *ratingSource {
	return &ratingSource{
		entities: []model.Entity{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "C"}},
		histories: map[string]*model.HistoryResult{
			"1": historyOf("1", "A", 1500, 1600),
			"2": {EntityID: "2", EntityName: "B"},
			"3": historyOf("3", "C", 1400, 1450, 1420, 1480),
		},
		gates: map[string]chan struct{}{},
	}
}

func historyOf(id, name string, ratings ...float64) *model.HistoryResult {
	res := &model.HistoryResult{EntityID: id, EntityName: name}
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range ratings {
		res.Points = append(res.Points, model.HistoryPoint{At: start.AddDate(1, i, 0), Rating: r})
	}
	return res
}

func (s *ratingSource) Entities(context.Context) ([]model.Entity, error) {
	return s.entities, nil
}

func (s *ratingSource) History(_ context.Context, id string) (*model.HistoryResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	gate := s.gates[id]
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	res, ok := s.histories[id]
	if !ok {
		return nil, &eloapi.APIError{EntityID: id, StatusCode: http.StatusNotFound, Message: "Fighter not found"}
	}
	return res, nil
}

func (s *ratingSource) gate(id string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	s.gates[id] = g
	return g
}

func (s *ratingSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// countingFactory wraps the go-chart factory and counts live instances.
type countingFactory struct {
	inner *chart.Factory
	mu    sync.Mutex
	made  []*chart.Instance
}

func (f *countingFactory) Create(series []model.SeriesDescriptor, title string) (chartstate.Instance, error) {
	inst, err := f.inner.Create(series, title)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.made = append(f.made, inst)
	f.mu.Unlock()
	return inst, nil
}

func (f *countingFactory) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, inst := range f.made {
		if !inst.Destroyed() {
			n++
		}
	}
	return n
}

type fixture struct {
	source    *ratingSource
	primary   *selection.Control
	secondary *selection.Control
	inbox     *notify.Inbox
	charts    *chartstate.Manager
	factory   *countingFactory
	ctrl      *app.Controller
}

func newFixture() *fixture {
	fx := &fixture{
		source:    newRatingSource(),
		primary:   selection.New("primary"),
		secondary: selection.New("secondary"),
		inbox:     notify.NewInbox(),
		factory:   &countingFactory{inner: chart.NewFactory(chart.WithSize(320, 160))},
	}
	fx.charts = chartstate.NewManager(fx.factory)
	fx.ctrl = app.NewController(
		fx.primary, fx.secondary,
		roster.NewLoader(fx.source, []roster.Control{fx.primary, fx.secondary}),
		history.NewFetcher(fx.source, fx.inbox),
		fx.charts,
		fx.inbox,
	)
	return fx
}

func texts(msgs []notify.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}
