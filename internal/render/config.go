// Package render draws a single comparison to an image file without the
// HTTP surface.
package render

import (
	"time"

	"github.com/okian/elocompare/internal/adapters/chart"
)

// Config holds one render request.
type Config struct {
	Primary   string       // Entity id for the first slot
	Secondary string       // Entity id for the second slot, optional
	Out       string       // Output file
	Format    chart.Format // PNG or SVG
	LogFile   string       // Optional log file, in addition to stderr
	Verbose   bool         // Debug logging
}

// Stats summarizes a run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Roster    int
	Datasets  int
	Messages  int
	Bytes     int
}
