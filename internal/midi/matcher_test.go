package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/mcascone/captain-config/internal/control"
)

func testSet(t *testing.T, channel int, raws map[control.Identity]control.Raw) *control.Set {
	t.Helper()
	set := &control.Set{Device: "std10", Channel: channel}
	ids := []control.Identity{
		control.Button(0), control.Button(1), control.Button(2), control.Button(3), control.Button(4),
		control.Button(5), control.Button(6), control.Button(7), control.Button(8), control.Button(9),
		control.Encoder(), control.EncoderPush(), control.Expression(0), control.Expression(1),
	}
	for _, id := range ids {
		cfg, diags := control.Normalize(raws[id], id)
		require.Empty(t, diags)
		set.Controls = append(set.Controls, cfg)
	}
	return set
}

func TestMatcherLookups(t *testing.T) {
	set := testSet(t, 2, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(80)},
		control.Button(1): {Type: control.Str("note"), Note: control.Int(36)},
		control.Button(2): {CC: control.Int(80), Channel: control.Int(7)},
		control.Button(3): {Type: control.Str("pc"), Program: control.Int(5)},
	})
	m := NewMatcher(set)

	id, ok := m.ControlChange(2, 80)
	require.True(t, ok)
	assert.Equal(t, control.Button(0), id)

	// The same controller on another channel is another control.
	id, ok = m.ControlChange(7, 80)
	require.True(t, ok)
	assert.Equal(t, control.Button(2), id)

	_, ok = m.ControlChange(0, 80)
	assert.False(t, ok)

	id, ok = m.Note(2, 36)
	require.True(t, ok)
	assert.Equal(t, control.Button(1), id)

	// Notes and CCs live in separate spaces.
	_, ok = m.ControlChange(2, 36)
	assert.False(t, ok)

	// Program controls are one-way and never matchable.
	_, ok = m.ControlChange(2, 5)
	assert.False(t, ok)

	// Default assignments are matchable too: the encoder sits on cc 11.
	id, ok = m.ControlChange(2, 11)
	require.True(t, ok)
	assert.Equal(t, control.Encoder(), id)
}

func TestMatcherSkipsInactive(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(80), Enabled: control.Bool(false)},
	})
	set.Find(control.Button(1)).Disabled = true

	m := NewMatcher(set)
	_, ok := m.ControlChange(0, 80)
	assert.False(t, ok)
	_, ok = m.ControlChange(0, 21)
	assert.False(t, ok)
}

func TestMatcherFirstWins(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(4): {CC: control.Int(11)},
	})
	m := NewMatcher(set)

	// buttons[4] and the encoder both claim cc 11; the earlier control
	// keeps it, matching Set.Validate's duplicate rule.
	id, ok := m.ControlChange(0, 11)
	require.True(t, ok)
	assert.Equal(t, control.Button(4), id)
}

func TestMatcherHandle(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(70)},
		control.Button(1): {Type: control.Str("note"), Note: control.Int(40)},
	})
	m := NewMatcher(set)

	for _, tc := range []struct {
		name     string
		msg      midi.Message
		expected Feedback
		ok       bool
	}{
		{
			name:     "cc above threshold is on",
			msg:      midi.ControlChange(0, 70, 127),
			expected: Feedback{Identity: control.Button(0), Value: 127, On: true},
			ok:       true,
		},
		{
			name:     "cc 64 is on",
			msg:      midi.ControlChange(0, 70, 64),
			expected: Feedback{Identity: control.Button(0), Value: 64, On: true},
			ok:       true,
		},
		{
			name:     "cc 63 is off",
			msg:      midi.ControlChange(0, 70, 63),
			expected: Feedback{Identity: control.Button(0), Value: 63, On: false},
			ok:       true,
		},
		{
			name:     "note on",
			msg:      midi.NoteOn(0, 40, 90),
			expected: Feedback{Identity: control.Button(1), Value: 90, On: true},
			ok:       true,
		},
		{
			name:     "note on with zero velocity is off",
			msg:      midi.NoteOn(0, 40, 0),
			expected: Feedback{Identity: control.Button(1), Value: 0, On: false},
			ok:       true,
		},
		{
			name:     "note off",
			msg:      midi.NoteOffVelocity(0, 40, 33),
			expected: Feedback{Identity: control.Button(1), Value: 33, On: false},
			ok:       true,
		},
		{name: "unclaimed cc", msg: midi.ControlChange(0, 99, 127)},
		{name: "wrong channel", msg: midi.ControlChange(5, 70, 127)},
		{name: "program change ignored", msg: midi.ProgramChange(0, 70)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fb, ok := m.Handle(tc.msg)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, fb)
			}
		})
	}
}

func TestRouterRebuild(t *testing.T) {
	r := NewRouter(testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(70)},
	}))

	fb, ok := r.Handle(midi.ControlChange(0, 70, 127))
	require.True(t, ok)
	assert.Equal(t, control.Button(0), fb.Identity)

	r.Rebuild(testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(71)},
	}))

	_, ok = r.Handle(midi.ControlChange(0, 70, 127))
	assert.False(t, ok)
	fb, ok = r.Handle(midi.ControlChange(0, 71, 127))
	require.True(t, ok)
	assert.Equal(t, control.Button(0), fb.Identity)
}

func TestNewMatcherNil(t *testing.T) {
	m := NewMatcher(nil)
	_, ok := m.ControlChange(0, 20)
	assert.False(t, ok)
}
