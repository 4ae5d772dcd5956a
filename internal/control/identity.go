package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Class partitions the physical controls of a unit.
type Class string

const (
	ClassButton      Class = "button"
	ClassEncoder     Class = "encoder"
	ClassEncoderPush Class = "encoder_push"
	ClassExpression  Class = "expression"
)

// Identity names one physical control. Index is the 0-based button position
// for ClassButton and the pedal number for ClassExpression (0 = exp1,
// 1 = exp2); it is always 0 for the encoder and its push switch.
type Identity struct {
	Class Class
	Index int
}

// Button returns the identity of the footswitch at position i.
func Button(i int) Identity { return Identity{Class: ClassButton, Index: i} }

// Encoder returns the rotary encoder's identity.
func Encoder() Identity { return Identity{Class: ClassEncoder} }

// EncoderPush returns the identity of the encoder's push switch.
func EncoderPush() Identity { return Identity{Class: ClassEncoderPush} }

// Expression returns the identity of expression pedal i (0 = exp1, 1 = exp2).
func Expression(i int) Identity { return Identity{Class: ClassExpression, Index: i} }

// String renders the identity in document path form: "buttons[3]",
// "encoder", "encoder.push", "expression.exp1". Diagnostics and the CLI use
// this form, and ParseIdentity accepts it back.
func (id Identity) String() string {
	switch id.Class {
	case ClassButton:
		return fmt.Sprintf("buttons[%d]", id.Index)
	case ClassEncoder:
		return "encoder"
	case ClassEncoderPush:
		return "encoder.push"
	case ClassExpression:
		return fmt.Sprintf("expression.exp%d", id.Index+1)
	}
	return string(id.Class)
}

// Field returns the document path of one of the identity's fields, e.g.
// "buttons[2].cc".
func (id Identity) Field(name string) string {
	return id.String() + "." + name
}

// Parent returns the control this one inherits its channel from, if that
// is another control rather than the global settings. Only the encoder
// push has such a parent.
func (id Identity) Parent() (Identity, bool) {
	if id.Class == ClassEncoderPush {
		return Encoder(), true
	}
	return Identity{}, false
}

// ParseIdentity reads the path form produced by String.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "encoder":
		return Encoder(), nil
	case "encoder.push", "push":
		return EncoderPush(), nil
	case "expression.exp1", "exp1":
		return Expression(0), nil
	case "expression.exp2", "exp2":
		return Expression(1), nil
	}
	if rest, ok := strings.CutPrefix(s, "buttons["); ok {
		if num, ok := strings.CutSuffix(rest, "]"); ok {
			i, err := strconv.Atoi(num)
			if err == nil && i >= 0 {
				return Button(i), nil
			}
		}
	}
	return Identity{}, fmt.Errorf("unknown control %q", s)
}
