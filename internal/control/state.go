package control

// State is the runtime half of one control: the on/off latch, the keytime
// cursor, the running program number for the relative program kinds, and
// the encoder/pedal positions. It is pure bookkeeping; the midi layer
// turns its transitions into wire messages.
type State struct {
	cfg *Config

	on      bool
	next    int // keytime index the next activation will consume
	current int // keytime index of the last activation

	program  int // running program number for pc_inc / pc_dec
	position int // encoder internal position 0..127
	slot     int // last emitted detent slot, -1 before the first
	lastSent int // last expression value sent, -1 before the first
}

// NewState returns the resting state for a control.
func NewState(cfg *Config) *State {
	s := &State{cfg: cfg, slot: -1, lastSent: -1}
	if p, ok := cfg.Message.(Program); ok {
		s.program = p.Number
	}
	if cfg.Sweep != nil {
		s.position = cfg.Sweep.Initial
	}
	return s
}

// Press consumes a switch-down. It returns the keytime state this
// activation uses and whether the control is logically on afterwards.
// Cycling starts at state 0 and advances once per activation, so a
// three-state control fires 0, 1, 2, 0, ...; host feedback never moves
// the cursor.
func (s *State) Press() (stateIndex int, on bool) {
	n := len(s.cfg.States)
	stateIndex = s.next
	s.current = s.next
	if n > 1 {
		s.next = (s.next + 1) % n
	}

	switch m := s.cfg.State(stateIndex).Message.(type) {
	case Program:
		s.program = m.Number
	case ProgramInc:
		s.program = clampInt(s.program+m.Step, 0, 127)
	case ProgramDec:
		s.program = clampInt(s.program-m.Step, 0, 127)
	}

	if s.cfg.EffectiveMode() == ModeToggle && n == 1 {
		s.on = !s.on
	} else {
		// Momentary presses and multi-state cycles always land on.
		s.on = true
	}
	return stateIndex, s.on
}

// Release consumes a switch-up. fire is true when a released edge should
// be transmitted: only momentary CC and Note controls do; the program
// kinds are pulses and latched toggles hold their state.
func (s *State) Release() (stateIndex int, fire bool) {
	stateIndex = s.current
	if s.cfg.EffectiveMode() != ModeMomentary {
		return stateIndex, false
	}
	s.on = false
	if s.cfg.Message.Kind().ForcesMomentary() {
		return stateIndex, false
	}
	return stateIndex, true
}

// SetOn applies host feedback: it drives the latch directly and leaves
// the keytime cursor alone.
func (s *State) SetOn(on bool) {
	s.on = on
}

// On reports the logical state.
func (s *State) On() bool { return s.on }

// StateIndex returns the keytime state of the last activation, the one
// the LEDs and display are showing.
func (s *State) StateIndex() int { return s.current }

// Program returns the running program number.
func (s *State) Program() int { return s.program }

// Reset returns the control to rest: off, cycling cursor back at zero.
func (s *State) Reset() {
	s.on = false
	s.next = 0
	s.current = 0
}

// Turn consumes an encoder rotation of delta detents. It returns the
// value to transmit and whether a message is due: a continuous sweep
// emits every move, a stepped sweep only on slot boundary crossings.
func (s *State) Turn(delta int) (value int, send bool) {
	if delta == 0 {
		return 0, false
	}
	s.position = clampInt(s.position+delta, 0, 127)
	if s.cfg.Sweep.Stepped() {
		slot := s.cfg.Sweep.Slot(s.position)
		if slot == s.slot {
			return 0, false
		}
		s.slot = slot
		return slot, true
	}
	return s.position, true
}

// Pedal consumes an expression pedal position (0.0..1.0 of calibrated
// travel). It returns the mapped value and whether it cleared the
// hysteresis threshold since the last send.
func (s *State) Pedal(position float64) (value int, send bool) {
	if s.cfg.Response == nil {
		return 0, false
	}
	v := s.cfg.Response.Value(position)
	if s.lastSent >= 0 && !s.cfg.Response.ShouldSend(s.lastSent, v) {
		return v, false
	}
	s.lastSent = v
	return v, true
}
