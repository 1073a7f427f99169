package watcher

import (
	"sync"
	"time"
)

// coalescer gathers events until the watched files have been quiet for the
// delay, then emits one event per path in first-seen order. An index writer
// typically produces several events per save (truncate, write, chmod, or a
// remove and create pair when replacing by rename); the batch reports each
// file once with its net change.
type coalescer struct {
	delay time.Duration
	emit  func([]Event)

	mu      sync.Mutex
	timer   *time.Timer
	order   []string
	pending map[string]Event
}

func newCoalescer(delay time.Duration, emit func([]Event)) *coalescer {
	return &coalescer{
		delay:   delay,
		emit:    emit,
		pending: make(map[string]Event),
	}
}

// add records ev and restarts the quiet period.
func (c *coalescer) add(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.pending[ev.Path]; ok {
		ev.Type = merge(prev.Type, ev.Type)
	} else {
		c.order = append(c.order, ev.Path)
	}
	c.pending[ev.Path] = ev

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.fire)
}

// merge folds a later event type into an earlier one for the same path.
// A file that disappears and comes back was replaced, which readers see as a
// modification; a file created and then written is still new.
func merge(prev, next EventType) EventType {
	switch {
	case prev == EventDelete && next == EventCreate:
		return EventModify
	case prev == EventCreate && next == EventModify:
		return EventCreate
	default:
		return next
	}
}

func (c *coalescer) take() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer = nil
	if len(c.order) == 0 {
		return nil
	}
	events := make([]Event, 0, len(c.order))
	for _, path := range c.order {
		events = append(events, c.pending[path])
	}
	c.order = nil
	clear(c.pending)
	return events
}

func (c *coalescer) fire() {
	if events := c.take(); len(events) > 0 && c.emit != nil {
		c.emit(events)
	}
}

// cancel drops pending events without emitting them.
func (c *coalescer) cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.order = nil
	clear(c.pending)
}

// flush emits pending events now instead of waiting out the delay.
func (c *coalescer) flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	c.fire()
}

// size is the number of distinct paths waiting to be emitted.
func (c *coalescer) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
