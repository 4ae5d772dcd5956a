package midi

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/mcascone/captain-config/internal/colors"
	"github.com/mcascone/captain-config/internal/control"
)

// Performer drives the live state machines for one control set and turns
// presses, encoder turns, and pedal moves into wire messages. It is not
// safe for concurrent use; the event loop owns it.
type Performer struct {
	set    *control.Set
	states map[control.Identity]*control.State
}

// NewPerformer builds the runtime state for every active control in set.
func NewPerformer(set *control.Set) *Performer {
	p := &Performer{
		set:    set,
		states: make(map[control.Identity]*control.State),
	}
	for _, c := range set.Controls {
		if c.Active() {
			p.states[c.Identity] = control.NewState(c)
		}
	}
	return p
}

// State returns the live state for id, or nil for inactive controls.
func (p *Performer) State(id control.Identity) *control.State {
	return p.states[id]
}

// Press handles a switch press and returns the messages to send.
func (p *Performer) Press(id control.Identity) []midi.Message {
	st := p.states[id]
	if st == nil {
		return nil
	}
	stateIdx, on := st.Press()
	a, ok := p.set.Assignment(id, stateIdx)
	if !ok {
		return nil
	}
	switch a.Kind {
	case control.KindCC:
		v := a.Off
		if on {
			v = a.On
		}
		return []midi.Message{midi.ControlChange(uint8(a.Channel), uint8(a.Identifier), uint8(v))}
	case control.KindNote:
		if on {
			return []midi.Message{midi.NoteOn(uint8(a.Channel), uint8(a.Identifier), uint8(a.On))}
		}
		return noteOff(a)
	case control.KindProgram, control.KindProgramInc, control.KindProgramDec:
		return []midi.Message{midi.ProgramChange(uint8(a.Channel), uint8(st.Program()))}
	}
	return nil
}

// Release handles a switch release. Momentary CC and note controls fire
// their off message; everything else stays silent.
func (p *Performer) Release(id control.Identity) []midi.Message {
	st := p.states[id]
	if st == nil {
		return nil
	}
	stateIdx, fire := st.Release()
	if !fire {
		return nil
	}
	a, ok := p.set.Assignment(id, stateIdx)
	if !ok {
		return nil
	}
	switch a.Kind {
	case control.KindCC:
		return []midi.Message{midi.ControlChange(uint8(a.Channel), uint8(a.Identifier), uint8(a.Off))}
	case control.KindNote:
		return noteOff(a)
	}
	return nil
}

func noteOff(a control.Assignment) []midi.Message {
	if a.Off > 0 {
		return []midi.Message{midi.NoteOffVelocity(uint8(a.Channel), uint8(a.Identifier), uint8(a.Off))}
	}
	return []midi.Message{midi.NoteOff(uint8(a.Channel), uint8(a.Identifier))}
}

// Turn handles encoder rotation by delta detents. Rotation is a
// continuous gesture, so only a CC-typed encoder emits anything.
func (p *Performer) Turn(delta int) []midi.Message {
	id := control.Encoder()
	st := p.states[id]
	if st == nil {
		return nil
	}
	value, send := st.Turn(delta)
	if !send {
		return nil
	}
	a, ok := p.set.Assignment(id, 0)
	if !ok || a.Kind != control.KindCC {
		return nil
	}
	return []midi.Message{midi.ControlChange(uint8(a.Channel), uint8(a.Identifier), uint8(value))}
}

// Pedal handles an expression pedal move. position is the normalized
// travel, 0 at heel and 1 at toe.
func (p *Performer) Pedal(id control.Identity, position float64) []midi.Message {
	st := p.states[id]
	if st == nil {
		return nil
	}
	value, send := st.Pedal(position)
	if !send {
		return nil
	}
	a, ok := p.set.Assignment(id, 0)
	if !ok || a.Kind != control.KindCC {
		return nil
	}
	return []midi.Message{midi.ControlChange(uint8(a.Channel), uint8(a.Identifier), uint8(value))}
}

// Apply folds a host feedback event into the state it addresses.
func (p *Performer) Apply(fb Feedback) {
	if st := p.states[fb.Identity]; st != nil {
		st.SetOn(fb.On)
	}
}

// LEDColor returns the color the control's LEDs should show right now:
// the current state's color when on, its off-mode rendering otherwise.
func (p *Performer) LEDColor(id control.Identity) colors.RGB {
	c := p.set.Find(id)
	st := p.states[id]
	if c == nil || st == nil {
		return colors.RGB{}
	}
	view := c.State(st.StateIndex())
	if st.On() {
		return view.Color.RGB()
	}
	return colors.OffState(view.Color, string(c.OffMode))
}
