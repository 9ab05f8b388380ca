package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/elocompare/internal/adapters/chart"
	"github.com/okian/elocompare/internal/adapters/eloapi"
	"github.com/okian/elocompare/internal/adapters/notify"
	"github.com/okian/elocompare/internal/adapters/selection"
	"github.com/okian/elocompare/internal/app"
	"github.com/okian/elocompare/internal/chartstate"
	"github.com/okian/elocompare/internal/config"
	"github.com/okian/elocompare/internal/domain/compose"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/internal/history"
	"github.com/okian/elocompare/internal/roster"
	"github.com/okian/elocompare/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	imagePermission     = 0644
)

// Run loads the roster, views the requested comparison and writes the chart
// to cfg.Out. User messages produced along the way go to msgs, one per line.
func Run(ctx context.Context, appCfg *config.Config, cfg *Config, msgs io.Writer) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("render")

	log.Info(ctx, "starting render",
		logger.String("primary", cfg.Primary),
		logger.String("secondary", cfg.Secondary),
		logger.String("out", cfg.Out),
		logger.String("format", string(cfg.Format)),
		logger.String("rosterURL", appCfg.RosterURL))

	client := eloapi.NewClient(appCfg.RosterURL, appCfg.HistoryURL, eloapi.WithTimeout(appCfg.HTTPTimeout()))
	primary := selection.New(model.SlotPrimary.String())
	secondary := selection.New(model.SlotSecondary.String())
	inbox := notify.NewInbox(notify.WithLogger(log))

	factory := chart.NewFactory(chart.WithSize(appCfg.ChartWidth, appCfg.ChartHeight))
	charts := chartstate.NewManager(chartstate.GoChart(factory), chartstate.WithLogger(log))
	defer charts.Clear(ctx)

	ctrl := app.NewController(primary, secondary,
		roster.NewLoader(client, []roster.Control{primary, secondary}, roster.WithLogger(log)),
		history.NewFetcher(client, inbox, history.WithLogger(log)),
		charts, inbox,
		app.WithLogger(log),
		app.WithComposer(compose.New(compose.WithPalette(appCfg.Palette))),
	)

	stats.Roster = ctrl.Init(ctx)
	ids := [model.SlotCount]string{cfg.Primary, cfg.Secondary}
	for _, slot := range model.Slots {
		if err := ctrl.Select(ctx, slot, ids[slot]); err != nil {
			return finish(stats, inbox, msgs), err
		}
	}

	outcome, err := ctrl.View(ctx)
	stats.Datasets = outcome.Datasets
	if err != nil {
		return finish(stats, inbox, msgs), fmt.Errorf("%w: %s: %w", ErrNotRendered, outcome.Status, err)
	}

	var buf bytes.Buffer
	ok, err := charts.WriteImage(&buf, cfg.Format)
	if err != nil {
		return finish(stats, inbox, msgs), fmt.Errorf("%w: %w", ErrNotRendered, err)
	}
	if !ok {
		return finish(stats, inbox, msgs), ErrNotRendered
	}

	if err := writeFile(cfg.Out, buf.Bytes()); err != nil {
		return finish(stats, inbox, msgs), err
	}
	stats.Bytes = buf.Len()

	log.Info(ctx, "chart written",
		logger.String("title", outcome.Title),
		logger.String("chartID", outcome.ChartID),
		logger.String("out", cfg.Out))
	return finish(stats, inbox, msgs), nil
}

// finish drains pending messages to w and closes the stats window.
func finish(stats *Stats, inbox *notify.Inbox, w io.Writer) *Stats {
	for _, m := range inbox.Drain() {
		stats.Messages++
		if w != nil {
			_, _ = fmt.Fprintf(w, "%s: %s\n", m.Level, m.Text)
		}
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats
}

func writeFile(name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("%w: %w", ErrOutput, err)
		}
	}
	if err := os.WriteFile(name, data, imagePermission); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("roster", stats.Roster),
		logger.Int("datasets", stats.Datasets),
		logger.Int("messages", stats.Messages),
		logger.Int("bytes", stats.Bytes),
		logger.String("duration", stats.Duration.String()))
}
