package control

import "fmt"

// Set is a complete normalized configuration: every control of the device
// family in canonical order (buttons by index, then encoder, encoder push,
// exp1, exp2) plus the global settings they inherit from. Controls the
// active variant lacks are present but flagged Disabled.
type Set struct {
	Device   string // variant name as written to the document
	Channel  int    // global default channel, 0..15
	Controls []*Config
}

// Find returns the control with the given identity, or nil.
func (s *Set) Find(id Identity) *Config {
	for _, c := range s.Controls {
		if c.Identity == id {
			return c
		}
	}
	return nil
}

// Buttons returns the footswitch controls in index order.
func (s *Set) Buttons() []*Config {
	var out []*Config
	for _, c := range s.Controls {
		if c.Identity.Class == ClassButton {
			out = append(out, c)
		}
	}
	return out
}

// EffectiveChannel resolves the channel a control transmits on: its own
// override when present, otherwise its parent's effective channel (the
// encoder for the push switch, the global default for everything else).
func (s *Set) EffectiveChannel(id Identity) int {
	c := s.Find(id)
	if c == nil {
		return clampInt(s.Channel, MinChannel, MaxChannel)
	}
	if parent, ok := id.Parent(); ok {
		return ResolveChannel(s.EffectiveChannel(parent), c.Channel)
	}
	return ResolveChannel(s.Channel, c.Channel)
}

// Assignment is the wire-level identity of one keytime state: what goes
// out when the control fires, and what a host must send to address it.
type Assignment struct {
	Kind       Kind
	Identifier int // controller or note number; -1 for the program kinds
	Channel    int
	On         int // cc_on, velocity_on, the program number, or the step
	Off        int // cc_off / velocity_off; 0 for the program kinds
}

// Assignment resolves the dispatch parameters of one control in the given
// keytime state. ok is false for unknown identities and for controls
// excluded from dispatch (user-disabled, or unsupported on the active
// variant).
func (s *Set) Assignment(id Identity, state int) (Assignment, bool) {
	c := s.Find(id)
	if !c.Active() {
		return Assignment{}, false
	}
	view := c.State(state)
	a := Assignment{
		Kind:       view.Message.Kind(),
		Identifier: -1,
		Channel:    s.EffectiveChannel(id),
	}
	switch m := view.Message.(type) {
	case CC:
		a.Identifier, a.On, a.Off = m.Controller, m.On, m.Off
	case Note:
		a.Identifier, a.On, a.Off = m.Key, m.OnVelocity, m.OffVelocity
	case Program:
		a.On = m.Number
	case ProgramInc:
		a.On = m.Step
	case ProgramDec:
		a.On = m.Step
	}
	return a, true
}

// Validate runs the set-wide checks that single-record normalization
// cannot see. No two active controls may answer the same (kind,
// identifier, effective channel) triple, or inbound feedback becomes
// ambiguous; the first control keeps the assignment and each later one
// gets a diagnostic naming both.
func (s *Set) Validate() []Diagnostic {
	type key struct {
		kind    Kind
		number  int
		channel int
	}
	first := make(map[key]*Config)
	var diags []Diagnostic
	for _, c := range s.Controls {
		if !c.Active() || !c.Message.Kind().AcceptsFeedback() {
			continue
		}
		num, ok := Identifier(c.Message)
		if !ok {
			continue
		}
		k := key{c.Message.Kind(), num, s.EffectiveChannel(c.Identity)}
		prev, dup := first[k]
		if !dup {
			first[k] = c
			continue
		}
		field, label := "cc", "CC"
		if k.kind == KindNote {
			field, label = "note", "note"
		}
		diags = append(diags, Diagnostic{
			Path:    c.Identity.Field(field),
			Code:    CodeDuplicateAssignment,
			Message: fmt.Sprintf("%s %d on channel %d is already assigned to %s", label, num, k.channel, prev.Identity),
		})
	}
	return diags
}
