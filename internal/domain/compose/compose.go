// Package compose turns fetched rating histories into chart datasets.
//
// Colors are assigned by slot position, not by presence: a lone selection in
// the secondary slot still gets the second palette color.
package compose

import (
	"fmt"
	"strings"

	"github.com/okian/elocompare/internal/domain/model"
)

const (
	// TitleSeparator joins the display names of the charted entities.
	TitleSeparator = " vs "

	// PlaceholderTitle is used when nothing can be charted.
	PlaceholderTitle = "Select Fighter(s) to View ELO"
)

// DefaultPalette is the series color palette, indexed by slot.
var DefaultPalette = []string{"#bb86fc", "#03dac6", "#cf6679", "#f48fb1"}

// Composition is the chart-ready output of Compose.
type Composition struct {
	Series []model.SeriesDescriptor
	Title  string
	// Empty lists display names of entities whose history had no points.
	Empty []string
}

// IsEmpty reports whether no dataset was produced.
func (c Composition) IsEmpty() bool {
	return len(c.Series) == 0
}

// Composer builds compositions with a fixed palette.
type Composer struct {
	palette []string
}

// Option configures a Composer.
type Option func(*Composer)

// WithPalette overrides the palette. Palettes shorter than the number of
// slots are ignored.
func WithPalette(colors []string) Option {
	return func(c *Composer) {
		if len(colors) >= model.SlotCount {
			c.palette = append([]string(nil), colors...)
		}
	}
}

// New creates a Composer.
func New(opts ...Option) *Composer {
	c := &Composer{palette: DefaultPalette}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Palette returns a copy of the configured palette.
func (c *Composer) Palette() []string {
	return append([]string(nil), c.palette...)
}

// Compose maps per-slot results to datasets. A nil entry means the slot was
// empty or its fetch failed; an entry with no points is reported in Empty.
func (c *Composer) Compose(results [model.SlotCount]*model.HistoryResult) Composition {
	var out Composition
	names := make([]string, 0, model.SlotCount)

	for i, res := range results {
		if res == nil {
			continue
		}
		if res.IsEmpty() {
			out.Empty = append(out.Empty, DisplayName(res, model.Slot(i)))
			continue
		}
		out.Series = append(out.Series, c.series(res, i))
		names = append(names, res.EntityName)
	}

	out.Title = Title(names)
	return out
}

func (c *Composer) series(res *model.HistoryResult, slot int) model.SeriesDescriptor {
	points := make([]model.Point, len(res.Points))
	for j, p := range res.Points {
		points[j] = model.Point{X: p.At, Y: p.Rating}
	}
	return model.SeriesDescriptor{
		Label:      res.EntityName,
		Points:     points,
		ColorIndex: slot,
		Color:      c.palette[slot%len(c.palette)],
	}
}

// Title joins names with TitleSeparator, or returns PlaceholderTitle.
func Title(names []string) string {
	if len(names) == 0 {
		return PlaceholderTitle
	}
	return strings.Join(names, TitleSeparator)
}

// DisplayName returns the entity's name, or a generic label for its slot.
func DisplayName(res *model.HistoryResult, slot model.Slot) string {
	if res != nil && strings.TrimSpace(res.EntityName) != "" {
		return res.EntityName
	}
	return fmt.Sprintf("Fighter %d", int(slot)+1)
}
