package control

import "strings"

// Kind tags the MIDI message family a control emits, as written in the
// "type" field of configuration documents.
type Kind string

const (
	KindCC         Kind = "cc"
	KindNote       Kind = "note"
	KindProgram    Kind = "pc"
	KindProgramInc Kind = "pc_inc"
	KindProgramDec Kind = "pc_dec"
)

// ParseKind maps a raw type tag to a Kind. ok is false for tags this build
// does not know; callers fall back to KindCC.
func ParseKind(tag string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(tag))) {
	case KindCC:
		return KindCC, true
	case KindNote:
		return KindNote, true
	case KindProgram:
		return KindProgram, true
	case KindProgramInc:
		return KindProgramInc, true
	case KindProgramDec:
		return KindProgramDec, true
	}
	return KindCC, false
}

// AcceptsFeedback reports whether hosts can address this kind from the
// inbound side. Only CC and Note assignments are matchable; program change
// kinds are one-way.
func (k Kind) AcceptsFeedback() bool {
	return k == KindCC || k == KindNote
}

// ForcesMomentary reports whether stored toggle mode is overridden for
// this kind. A program change is a pulse: there is no held state to
// transmit, so all three program kinds behave as momentary.
func (k Kind) ForcesMomentary() bool {
	return k == KindProgram || k == KindProgramInc || k == KindProgramDec
}

// Message is the kind-specific payload of a control. The set is closed:
// exactly CC, Note, Program, ProgramInc and ProgramDec implement it, and
// consumers are expected to switch over all five.
type Message interface {
	Kind() Kind
	isMessage()
}

// CC sends a control change on a fixed controller number, with distinct
// values for the on and off transitions.
type CC struct {
	Controller int
	On         int
	Off        int
}

// Note sends note on/off for a fixed key.
type Note struct {
	Key         int
	OnVelocity  int
	OffVelocity int
}

// Program sends a fixed program change.
type Program struct {
	Number int
}

// ProgramInc advances a running program number by Step on every press.
type ProgramInc struct {
	Step int
}

// ProgramDec walks the running program number back by Step on every press.
type ProgramDec struct {
	Step int
}

func (CC) Kind() Kind         { return KindCC }
func (Note) Kind() Kind       { return KindNote }
func (Program) Kind() Kind    { return KindProgram }
func (ProgramInc) Kind() Kind { return KindProgramInc }
func (ProgramDec) Kind() Kind { return KindProgramDec }

func (CC) isMessage()         {}
func (Note) isMessage()       {}
func (Program) isMessage()    {}
func (ProgramInc) isMessage() {}
func (ProgramDec) isMessage() {}

// Identifier returns the inbound-matchable number of the message (the
// controller for CC, the key for Note). ok is false for the program kinds,
// which have no identifier.
func Identifier(m Message) (int, bool) {
	switch v := m.(type) {
	case CC:
		return v.Controller, true
	case Note:
		return v.Key, true
	}
	return 0, false
}

// DefaultController returns the controller number a control is born with
// when its document record names none. Buttons count up from 20 so the ten
// footswitches land on 20..29; the remaining controls use the unit's fixed
// factory assignments.
func DefaultController(id Identity) int {
	switch id.Class {
	case ClassEncoder:
		return 11
	case ClassEncoderPush:
		return 14
	case ClassExpression:
		return 12 + id.Index
	default:
		return 20 + id.Index
	}
}
