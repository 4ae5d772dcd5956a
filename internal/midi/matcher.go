// Package midi connects control sets to the wire. It matches inbound
// host feedback to controls and turns presses and pedal moves into
// outbound messages; Manager owns the driver ports.
package midi

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/mcascone/captain-config/internal/control"
)

// Feedback is a host status update resolved against the active set.
type Feedback struct {
	Identity control.Identity
	Value    int
	On       bool
}

type matchKey struct {
	note    bool
	number  uint8
	channel uint8
}

// Matcher resolves inbound CC and note messages to the control that owns
// them. It is immutable once built; Router swaps whole matchers when the
// configuration changes.
type Matcher struct {
	byKey map[matchKey]control.Identity
}

// NewMatcher indexes every active CC and note assignment in set. Program
// change kinds emit only and never appear in the index. When two
// controls claim the same address the earlier one wins, matching the
// duplicate rule in Set.Validate.
func NewMatcher(set *control.Set) *Matcher {
	m := &Matcher{byKey: make(map[matchKey]control.Identity)}
	if set == nil {
		return m
	}
	for _, c := range set.Controls {
		a, ok := set.Assignment(c.Identity, 0)
		if !ok || !a.Kind.AcceptsFeedback() {
			continue
		}
		k := matchKey{
			note:    a.Kind == control.KindNote,
			number:  uint8(a.Identifier),
			channel: uint8(a.Channel),
		}
		if _, taken := m.byKey[k]; !taken {
			m.byKey[k] = c.Identity
		}
	}
	return m
}

// ControlChange returns the control listening on the given controller
// and channel.
func (m *Matcher) ControlChange(channel, controller uint8) (control.Identity, bool) {
	id, ok := m.byKey[matchKey{number: controller, channel: channel}]
	return id, ok
}

// Note returns the control listening on the given key and channel.
func (m *Matcher) Note(channel, key uint8) (control.Identity, bool) {
	id, ok := m.byKey[matchKey{note: true, number: key, channel: channel}]
	return id, ok
}

// Handle resolves one inbound message. ok is false for messages no
// control owns. A CC value above 63 reads as on; a note on with velocity
// zero reads as off.
func (m *Matcher) Handle(msg midi.Message) (Feedback, bool) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if id, ok := m.Note(channel, key); ok {
			return Feedback{Identity: id, Value: int(velocity), On: velocity > 0}, true
		}
	case msg.GetNoteOff(&channel, &key, &velocity):
		if id, ok := m.Note(channel, key); ok {
			return Feedback{Identity: id, Value: int(velocity)}, true
		}
	case msg.GetControlChange(&channel, &key, &velocity):
		if id, ok := m.ControlChange(channel, key); ok {
			return Feedback{Identity: id, Value: int(velocity), On: velocity > 63}, true
		}
	}
	return Feedback{}, false
}

// Router holds the live matcher and swaps it atomically when the
// configuration is rebuilt.
type Router struct {
	mu sync.RWMutex
	m  *Matcher
}

// NewRouter builds a router over the given set.
func NewRouter(set *control.Set) *Router {
	return &Router{m: NewMatcher(set)}
}

// Rebuild replaces the index after a configuration change. In-flight
// lookups finish against the old index.
func (r *Router) Rebuild(set *control.Set) {
	m := NewMatcher(set)
	r.mu.Lock()
	r.m = m
	r.mu.Unlock()
}

// Handle resolves one inbound message against the current index.
func (r *Router) Handle(msg midi.Message) (Feedback, bool) {
	r.mu.RLock()
	m := r.m
	r.mu.RUnlock()
	return m.Handle(msg)
}
