package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/mcascone/captain-config/internal/colors"
	"github.com/mcascone/captain-config/internal/control"
)

func TestPerformerToggleCC(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(20)},
	})
	p := NewPerformer(set)
	id := control.Button(0)

	assert.Equal(t, []midi.Message{midi.ControlChange(0, 20, 127)}, p.Press(id))
	assert.True(t, p.State(id).On())
	assert.Nil(t, p.Release(id))
	assert.True(t, p.State(id).On())

	assert.Equal(t, []midi.Message{midi.ControlChange(0, 20, 0)}, p.Press(id))
	assert.Nil(t, p.Release(id))
	assert.False(t, p.State(id).On())
}

func TestPerformerMomentaryCC(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(1): {
			CC:      control.Int(30),
			CCOn:    control.Int(100),
			CCOff:   control.Int(10),
			Mode:    control.Str("momentary"),
			Channel: control.Int(3),
		},
	})
	p := NewPerformer(set)
	id := control.Button(1)

	assert.Equal(t, []midi.Message{midi.ControlChange(3, 30, 100)}, p.Press(id))
	assert.True(t, p.State(id).On())
	assert.Equal(t, []midi.Message{midi.ControlChange(3, 30, 10)}, p.Release(id))
	assert.False(t, p.State(id).On())
}

func TestPerformerNote(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {
			Type:        control.Str("note"),
			Note:        control.Int(40),
			VelocityOn:  control.Int(90),
			VelocityOff: control.Int(64),
			Mode:        control.Str("momentary"),
		},
		control.Button(1): {
			Type: control.Str("note"),
			Note: control.Int(41),
			Mode: control.Str("momentary"),
		},
		control.Button(2): {
			Type: control.Str("note"),
			Note: control.Int(50),
		},
	})
	p := NewPerformer(set)

	// A nonzero off velocity goes out as a real note-off velocity.
	assert.Equal(t, []midi.Message{midi.NoteOn(0, 40, 90)}, p.Press(control.Button(0)))
	assert.Equal(t, []midi.Message{midi.NoteOffVelocity(0, 40, 64)}, p.Release(control.Button(0)))

	// The default off velocity of zero uses the plain note-off form.
	assert.Equal(t, []midi.Message{midi.NoteOn(0, 41, 127)}, p.Press(control.Button(1)))
	assert.Equal(t, []midi.Message{midi.NoteOff(0, 41)}, p.Release(control.Button(1)))

	// A latched note holds through release and opens on the next press.
	assert.Equal(t, []midi.Message{midi.NoteOn(0, 50, 127)}, p.Press(control.Button(2)))
	assert.Nil(t, p.Release(control.Button(2)))
	assert.Equal(t, []midi.Message{midi.NoteOff(0, 50)}, p.Press(control.Button(2)))
}

func TestPerformerProgramPulse(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {Type: control.Str("pc"), Program: control.Int(42)},
	})
	p := NewPerformer(set)
	id := control.Button(0)

	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 42)}, p.Press(id))
	assert.Nil(t, p.Release(id))
	assert.False(t, p.State(id).On())

	// Every press resends, even though nothing changed.
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 42)}, p.Press(id))
}

func TestPerformerProgramAccumulate(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {Type: control.Str("pc_inc"), Step: control.Int(10)},
		control.Button(1): {Type: control.Str("pc_dec"), Step: control.Int(4)},
		control.Button(2): {Type: control.Str("pc_inc"), Step: control.Int(100)},
	})
	p := NewPerformer(set)

	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 10)}, p.Press(control.Button(0)))
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 20)}, p.Press(control.Button(0)))
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 30)}, p.Press(control.Button(0)))

	// Each control keeps its own counter; decrementing saturates at zero.
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 0)}, p.Press(control.Button(1)))
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 0)}, p.Press(control.Button(1)))

	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 100)}, p.Press(control.Button(2)))
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 127)}, p.Press(control.Button(2)))
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 127)}, p.Press(control.Button(2)))
}

func TestPerformerKeytimeCycle(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {
			CC:       control.Int(60),
			Keytimes: control.Int(3),
			States: control.RawStates{
				{CCOn: control.Int(10)},
				{CCOn: control.Int(20)},
				{CCOn: control.Int(30)},
			},
		},
	})
	p := NewPerformer(set)
	id := control.Button(0)

	for _, want := range []uint8{10, 20, 30, 10} {
		assert.Equal(t, []midi.Message{midi.ControlChange(0, 60, want)}, p.Press(id))
		assert.Nil(t, p.Release(id))
		assert.True(t, p.State(id).On())
	}
}

func TestPerformerKeytimeProgram(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {
			Type:     control.Str("pc"),
			Program:  control.Int(5),
			Keytimes: control.Int(2),
			States: control.RawStates{
				{Program: control.Int(10)},
				{Program: control.Int(20)},
			},
		},
	})
	p := NewPerformer(set)
	id := control.Button(0)

	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 10)}, p.Press(id))
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 20)}, p.Press(id))
	assert.Equal(t, []midi.Message{midi.ProgramChange(0, 10)}, p.Press(id))
}

func TestPerformerTurnContinuous(t *testing.T) {
	set := testSet(t, 0, nil)
	p := NewPerformer(set)

	// The default sweep starts at 64 and rides cc 11.
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 65)}, p.Turn(1))
	assert.Nil(t, p.Turn(0))
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 127)}, p.Turn(62))

	// Saturated turns still restate the endpoint.
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 127)}, p.Turn(5))
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 0)}, p.Turn(-127))
}

func TestPerformerTurnStepped(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Encoder(): {Steps: control.Int(4), Initial: control.Int(0)},
	})
	p := NewPerformer(set)

	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 0)}, p.Turn(1))
	assert.Nil(t, p.Turn(20))
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 1)}, p.Turn(20))
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 3)}, p.Turn(60))
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 11, 0)}, p.Turn(-100))
}

func TestPerformerTurnGates(t *testing.T) {
	// A program-typed encoder fires on push, not on rotation.
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Encoder(): {Type: control.Str("pc"), Program: control.Int(9)},
	})
	p := NewPerformer(set)
	assert.Nil(t, p.Turn(1))

	// No encoder state at all when it is switched off.
	set = testSet(t, 0, map[control.Identity]control.Raw{
		control.Encoder(): {Enabled: control.Bool(false)},
	})
	p = NewPerformer(set)
	assert.Nil(t, p.State(control.Encoder()))
	assert.Nil(t, p.Turn(1))
}

func TestPerformerPedal(t *testing.T) {
	set := testSet(t, 0, nil)
	p := NewPerformer(set)
	id := control.Expression(0)

	assert.Equal(t, []midi.Message{midi.ControlChange(0, 12, 63)}, p.Pedal(id, 0.5))

	// Jitter below the threshold stays quiet.
	assert.Nil(t, p.Pedal(id, 0.51))
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 12, 66)}, p.Pedal(id, 0.52))

	assert.Equal(t, []midi.Message{midi.ControlChange(0, 12, 0)}, p.Pedal(id, 0))
	assert.Nil(t, p.Pedal(id, 0))
}

func TestPerformerPedalInverted(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Expression(1): {Polarity: control.Str("reverse")},
	})
	p := NewPerformer(set)
	id := control.Expression(1)

	assert.Equal(t, []midi.Message{midi.ControlChange(0, 13, 127)}, p.Pedal(id, 0))
	assert.Equal(t, []midi.Message{midi.ControlChange(0, 13, 0)}, p.Pedal(id, 1))
}

func TestPerformerPedalGates(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Expression(0): {Type: control.Str("pc")},
	})
	p := NewPerformer(set)

	// Program-typed pedals and non-pedal controls never stream.
	assert.Nil(t, p.Pedal(control.Expression(0), 0.5))
	assert.Nil(t, p.Pedal(control.Button(0), 0.5))
}

func TestPerformerApplyFeedback(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(20)},
	})
	p := NewPerformer(set)
	id := control.Button(0)

	p.Apply(Feedback{Identity: id, On: true})
	assert.True(t, p.State(id).On())
	p.Apply(Feedback{Identity: id, On: false})
	assert.False(t, p.State(id).On())

	// Feedback for a control we do not track is dropped.
	p.Apply(Feedback{Identity: control.Button(99), On: true})
}

func TestPerformerLEDColor(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {CC: control.Int(20), Color: control.Str("red")},
		control.Button(1): {CC: control.Int(21), Color: control.Str("red"), OffMode: control.Str("off")},
		control.Button(2): {
			CC:       control.Int(22),
			Keytimes: control.Int(3),
			States: control.RawStates{
				{Color: control.Str("red")},
				{Color: control.Str("green")},
				{Color: control.Str("blue")},
			},
		},
	})
	p := NewPerformer(set)

	// Off controls render dimmed by default, fully dark with off_mode "off".
	assert.Equal(t, colors.RGB{R: 38}, p.LEDColor(control.Button(0)))
	assert.Equal(t, colors.RGB{}, p.LEDColor(control.Button(1)))

	p.Press(control.Button(0))
	assert.Equal(t, colors.RGB{R: 255}, p.LEDColor(control.Button(0)))
	p.Press(control.Button(0))
	assert.Equal(t, colors.RGB{R: 38}, p.LEDColor(control.Button(0)))

	// Host feedback drives the lamp without a local press.
	p.Apply(Feedback{Identity: control.Button(1), On: true})
	assert.Equal(t, colors.RGB{R: 255}, p.LEDColor(control.Button(1)))

	// Cycling controls show the color of the state they landed on.
	id := control.Button(2)
	p.Press(id)
	assert.Equal(t, colors.RGB{R: 255}, p.LEDColor(id))
	p.Press(id)
	assert.Equal(t, colors.RGB{G: 255}, p.LEDColor(id))
	p.Press(id)
	assert.Equal(t, colors.RGB{B: 255}, p.LEDColor(id))
	p.Press(id)
	assert.Equal(t, colors.RGB{R: 255}, p.LEDColor(id))

	assert.Equal(t, colors.RGB{}, p.LEDColor(control.Button(99)))
}

func TestPerformerIgnoresInactive(t *testing.T) {
	set := testSet(t, 0, map[control.Identity]control.Raw{
		control.Button(0): {Enabled: control.Bool(false)},
	})
	set.Find(control.Button(1)).Disabled = true
	p := NewPerformer(set)

	require.Nil(t, p.State(control.Button(0)))
	assert.Nil(t, p.Press(control.Button(0)))
	assert.Nil(t, p.Release(control.Button(0)))
	assert.Nil(t, p.Press(control.Button(1)))
	assert.Nil(t, p.Press(control.Button(42)))
}
