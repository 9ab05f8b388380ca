package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrNoSeries          = errors.New("chart needs at least one series with points")
	ErrDestroyed         = errors.New("chart instance destroyed")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
