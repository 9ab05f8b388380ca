package render

import "errors"

var (
	// ErrNotRendered is returned when the comparison produced no chart.
	ErrNotRendered = errors.New("comparison not rendered")
	// ErrOutput is returned when the image cannot be written.
	ErrOutput = errors.New("write output")
)
