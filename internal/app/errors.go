package app

import "errors"

// Sentinel kinds for view and selection errors.
var (
	ErrNoSelection        = errors.New("no entity selected")
	ErrDuplicateSelection = errors.New("same entity selected twice")
	ErrEmptyComposition   = errors.New("no dataset could be composed")
	ErrRenderFailed       = errors.New("chart could not be rendered")
	ErrUnknownSlot        = errors.New("unknown selection slot")
	ErrBusy               = errors.New("action queue is full")
	ErrStopped            = errors.New("service stopped")
)

// User-facing texts.
const (
	MsgNoSelection        = "Please select at least one fighter."
	MsgDuplicateSelection = "Please select two different fighters for comparison, or clear one selection."
	MsgEmptyComposition   = "Could not fetch ELO data for the selected fighter(s). Check console for errors."
	MsgRenderFailed       = "Could not draw the chart. Check console for errors."
)
