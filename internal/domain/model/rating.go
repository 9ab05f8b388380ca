// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Entity is a selectable competitor from the roster.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryPoint is one rating observation. Points keep the order the source
// returned them in.
type HistoryPoint struct {
	At     time.Time
	Rating float64
}

// HistoryResult is a successfully fetched rating history. An empty Points
// slice means the entity exists but has no recorded history.
type HistoryResult struct {
	EntityID   string
	EntityName string
	Points     []HistoryPoint
}

// IsEmpty reports whether the history has no points.
func (r *HistoryResult) IsEmpty() bool {
	return r == nil || len(r.Points) == 0
}

// Point is a chart-ready (x, y) pair.
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// SeriesDescriptor is one dataset of the chart.
type SeriesDescriptor struct {
	Label      string  `json:"label"`
	Points     []Point `json:"points"`
	ColorIndex int     `json:"color_index"`
	Color      string  `json:"color"`
}

// Slot is one of the two selection positions.
type Slot int

// Selection slots.
const (
	SlotPrimary Slot = iota
	SlotSecondary
)

// SlotCount is the number of selection slots.
const SlotCount = 2

// Slots lists the slots in display order.
var Slots = [SlotCount]Slot{SlotPrimary, SlotSecondary}

func (s Slot) String() string {
	switch s {
	case SlotPrimary:
		return "primary"
	case SlotSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Valid reports whether s names a real slot.
func (s Slot) Valid() bool {
	return s == SlotPrimary || s == SlotSecondary
}

// ParseSlot maps "primary"/"secondary" (or "1"/"2") to a Slot.
func ParseSlot(v string) (Slot, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "primary", "1":
		return SlotPrimary, true
	case "secondary", "2":
		return SlotSecondary, true
	}
	return 0, false
}

// SelectionState holds the entity id chosen in each slot; "" means empty.
type SelectionState struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// IDs returns the selections indexed by slot.
func (s SelectionState) IDs() [SlotCount]string {
	return [SlotCount]string{strings.TrimSpace(s.Primary), strings.TrimSpace(s.Secondary)}
}

// Empty reports whether neither slot holds a selection.
func (s SelectionState) Empty() bool {
	ids := s.IDs()
	return ids[0] == "" && ids[1] == ""
}

// Duplicate reports whether both slots hold the same non-empty id.
func (s SelectionState) Duplicate() bool {
	ids := s.IDs()
	return ids[0] != "" && ids[0] == ids[1]
}
