package control

import (
	"strings"

	"github.com/mcascone/captain-config/internal/colors"
)

// Mode selects the press behavior of a switch-like control.
type Mode string

const (
	ModeToggle    Mode = "toggle"
	ModeMomentary Mode = "momentary"
)

// ParseMode maps a raw mode string to a Mode, falling back to def for
// anything unrecognized.
func ParseMode(s string, def Mode) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeToggle:
		return ModeToggle
	case ModeMomentary:
		return ModeMomentary
	}
	return def
}

// DefaultMode returns the mode a control is born with: footswitches
// latch, the encoder push and everything else is momentary.
func DefaultMode(id Identity) Mode {
	if id.Class == ClassButton {
		return ModeToggle
	}
	return ModeMomentary
}

// OffMode selects how a control's LED renders while logically off.
type OffMode string

const (
	OffModeDim OffMode = "dim"
	OffModeOff OffMode = "off"
)

// ParseOffMode maps a raw off_mode string to an OffMode, falling back to
// OffModeDim.
func ParseOffMode(s string) OffMode {
	if OffMode(strings.ToLower(strings.TrimSpace(s))) == OffModeOff {
		return OffModeOff
	}
	return OffModeDim
}

// Polarity orients an expression pedal's travel.
type Polarity string

const (
	PolarityNormal   Polarity = "normal"
	PolarityInverted Polarity = "inverted"
)

// ParsePolarity maps a raw polarity string to a Polarity. The firmware
// historically spelled inverted travel "reverse"; both are accepted and
// normalize to PolarityInverted.
func ParsePolarity(s string) Polarity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inverted", "reverse":
		return PolarityInverted
	}
	return PolarityNormal
}

// Config is one fully normalized control. Every field is concrete and in
// range except Channel, which stays nil while the control inherits its
// channel (see Set.EffectiveChannel). Normalize is the only intended
// constructor.
type Config struct {
	Identity Identity
	Label    string
	Color    colors.Color
	Mode     Mode
	OffMode  OffMode
	Channel  *int
	Message  Message
	States   []StateOverride // always 1..MaxKeytimes entries

	// Enabled is the user's own switch from the document. Disabled is set
	// when the active device variant lacks the control; the record is kept
	// so switching variants back restores it.
	Enabled  bool
	Disabled bool

	Sweep    *Sweep    // encoder only
	Response *Response // expression pedals only
}

// Active reports whether the control participates in matching and
// dispatch.
func (c *Config) Active() bool {
	return c != nil && c.Enabled && !c.Disabled
}

// EffectiveMode is the mode dispatch obeys. The stored mode is preserved
// verbatim for round-tripping, but program change kinds are pulses and
// always behave as momentary.
func (c *Config) EffectiveMode() Mode {
	if c.Message != nil && c.Message.Kind().ForcesMomentary() {
		return ModeMomentary
	}
	return c.Mode
}

// StateView is the control's color and message with one keytime state's
// overrides applied.
type StateView struct {
	Index   int
	Color   colors.Color
	Message Message
}

// State resolves keytime state i against the base configuration. An index
// outside the state list is clamped into it.
func (c *Config) State(i int) StateView {
	v := StateView{Color: c.Color, Message: c.Message}
	if len(c.States) == 0 {
		return v
	}
	i = clampInt(i, 0, len(c.States)-1)
	v.Index = i
	st := c.States[i]
	if st.Color != nil {
		v.Color = *st.Color
	}
	switch m := c.Message.(type) {
	case CC:
		if st.On != nil {
			m.On = *st.On
		}
		if st.Off != nil {
			m.Off = *st.Off
		}
		v.Message = m
	case Note:
		if st.On != nil {
			m.OnVelocity = *st.On
		}
		if st.Off != nil {
			m.OffVelocity = *st.Off
		}
		v.Message = m
	case Program:
		if st.Program != nil {
			m.Number = *st.Program
		}
		v.Message = m
	case ProgramInc:
		if st.Step != nil {
			m.Step = *st.Step
		}
		v.Message = m
	case ProgramDec:
		if st.Step != nil {
			m.Step = *st.Step
		}
		v.Message = m
	}
	return v
}
