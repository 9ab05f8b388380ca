// Package selection implements an in-memory selection control: a list of
// options, the currently selected value, and change subscribers.
//
// Like a DOM select, programmatic changes (Append, SetValue) do not notify on
// their own; callers invoke Notify once they are done so dependent views
// resynchronize.
package selection

import (
	"context"
	"strings"
	"sync"

	"github.com/okian/elocompare/internal/domain/model"
)

// Snapshot is the state delivered to subscribers.
type Snapshot struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Label   string `json:"label,omitempty"`
	Options int    `json:"options"`
	Version uint64 `json:"version"`
}

// Listener receives change notifications.
type Listener func(ctx context.Context, s Snapshot)

// Control is a single selection control. It is safe for concurrent use.
type Control struct {
	mu        sync.RWMutex
	name      string
	options   []model.Entity
	labels    map[string]string
	value     string
	version   uint64
	listeners map[int]Listener
	nextID    int
}

// New creates an empty control.
func New(name string) *Control {
	return &Control{
		name:      name,
		labels:    make(map[string]string),
		listeners: make(map[int]Listener),
	}
}

// Name returns the control's name.
func (c *Control) Name() string { return c.name }

// Append adds options. Options whose id is already present are skipped.
func (c *Control) Append(entities ...model.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entities {
		if _, ok := c.labels[e.ID]; ok {
			continue
		}
		c.options = append(c.options, e)
		c.labels[e.ID] = e.Name
	}
}

// Options returns a copy of the option list in insertion order.
func (c *Control) Options() []model.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Entity(nil), c.options...)
}

// Value returns the selected id, or "" when nothing is selected.
func (c *Control) Value() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// SetValue selects id; "" clears the selection. Ids that are not among the
// options are kept as given.
func (c *Control) SetValue(id string) {
	c.mu.Lock()
	c.value = strings.TrimSpace(id)
	c.mu.Unlock()
}

// Label returns the display name of id.
func (c *Control) Label(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.labels[id]
	return name, ok
}

// Snapshot returns the current state.
func (c *Control) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Control) snapshotLocked() Snapshot {
	return Snapshot{
		Name:    c.name,
		Value:   c.value,
		Label:   c.labels[c.value],
		Options: len(c.options),
		Version: c.version,
	}
}

// Subscribe registers l for change notifications and returns a function
// that removes it.
func (c *Control) Subscribe(l Listener) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Notify bumps the version and delivers the current state to every
// subscriber. Listeners run on the caller's goroutine, outside the lock.
func (c *Control) Notify(ctx context.Context) {
	c.mu.Lock()
	c.version++
	snap := c.snapshotLocked()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(ctx, snap)
	}
}
