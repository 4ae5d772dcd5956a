package control

import (
	"bytes"
	"encoding/json"
)

// Documents written by hand (or by older firmware) routinely carry fields
// of the wrong JSON type. Normalization must stay total over such input, so
// the raw layer decodes every leaf through Opt* wrappers that read a type
// mismatch or null as "absent" instead of failing the whole document. Only
// a payload that is not a JSON object at all is a hard error, and that is
// decided above this layer.

var nullLiteral = []byte("null")

// OptInt is an integer field that may be absent.
type OptInt struct {
	V   int
	Set bool
}

// Int returns a present OptInt, for building records in code.
func Int(v int) OptInt { return OptInt{V: v, Set: true} }

// Or returns the value, or def when the field was absent.
func (o OptInt) Or(def int) int {
	if o.Set {
		return o.V
	}
	return def
}

func (o *OptInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, nullLiteral) {
		*o = OptInt{}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*o = OptInt{V: n, Set: true}
		return nil
	}
	// JSON writers that round-trip through floats emit 20.0 for 20.
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*o = OptInt{V: int(f), Set: true}
		return nil
	}
	*o = OptInt{}
	return nil
}

// OptString is a string field that may be absent.
type OptString struct {
	V   string
	Set bool
}

// Str returns a present OptString.
func Str(v string) OptString { return OptString{V: v, Set: true} }

// Or returns the value, or def when the field was absent.
func (o OptString) Or(def string) string {
	if o.Set {
		return o.V
	}
	return def
}

func (o *OptString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, nullLiteral) {
		*o = OptString{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = OptString{V: s, Set: true}
		return nil
	}
	*o = OptString{}
	return nil
}

// OptBool is a boolean field that may be absent.
type OptBool struct {
	V   bool
	Set bool
}

// Bool returns a present OptBool.
func Bool(v bool) OptBool { return OptBool{V: v, Set: true} }

// Or returns the value, or def when the field was absent.
func (o OptBool) Or(def bool) bool {
	if o.Set {
		return o.V
	}
	return def
}

func (o *OptBool) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, nullLiteral) {
		*o = OptBool{}
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*o = OptBool{V: v, Set: true}
		return nil
	}
	*o = OptBool{}
	return nil
}

func isJSONObject(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// Raw is one control record as found in a document, before normalization.
// Every field is optional; Normalize supplies the defaults. Fields a
// record's message kind does not use are ignored.
type Raw struct {
	Label   OptString `json:"label"`
	Color   OptString `json:"color"`
	Mode    OptString `json:"mode"`
	OffMode OptString `json:"off_mode"`
	Channel OptInt    `json:"channel"`
	Type    OptString `json:"type"`
	Enabled OptBool   `json:"enabled"`

	CC          OptInt `json:"cc"`
	CCOn        OptInt `json:"cc_on"`
	CCOff       OptInt `json:"cc_off"`
	Note        OptInt `json:"note"`
	VelocityOn  OptInt `json:"velocity_on"`
	VelocityOff OptInt `json:"velocity_off"`
	Program     OptInt `json:"program"`
	Step        OptInt `json:"step"`

	Keytimes OptInt    `json:"keytimes"`
	States   RawStates `json:"states"`

	// Encoder sweep range.
	Min     OptInt `json:"min"`
	Max     OptInt `json:"max"`
	Initial OptInt `json:"initial"`
	Steps   OptInt `json:"steps"`

	// Expression response shaping.
	Polarity  OptString `json:"polarity"`
	Threshold OptInt    `json:"threshold"`

	// Nested push switch record on the encoder.
	Push *Raw `json:"push"`
}

func (r *Raw) UnmarshalJSON(b []byte) error {
	if !isJSONObject(b) {
		*r = Raw{}
		return nil
	}
	type alias Raw
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		*r = Raw{}
		return nil
	}
	*r = Raw(a)
	return nil
}

// RawState is one keytime state entry before normalization: a sparse
// override of the control's color and of its kind's value fields.
type RawState struct {
	Color       OptString `json:"color"`
	CCOn        OptInt    `json:"cc_on"`
	CCOff       OptInt    `json:"cc_off"`
	VelocityOn  OptInt    `json:"velocity_on"`
	VelocityOff OptInt    `json:"velocity_off"`
	Program     OptInt    `json:"program"`
	Step        OptInt    `json:"step"`
}

func (s *RawState) UnmarshalJSON(b []byte) error {
	if !isJSONObject(b) {
		*s = RawState{}
		return nil
	}
	type alias RawState
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		*s = RawState{}
		return nil
	}
	*s = RawState(a)
	return nil
}

// RawStates reads a malformed states list as empty rather than failing.
type RawStates []RawState

func (s *RawStates) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, nullLiteral) {
		*s = nil
		return nil
	}
	var list []RawState
	if err := json.Unmarshal(b, &list); err != nil {
		*s = nil
		return nil
	}
	*s = list
	return nil
}
