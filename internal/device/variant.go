// Package device describes the supported controller models: which
// controls each one carries and how its switches map to LEDs and the
// display grid. It also detects units mounted as removable volumes.
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcascone/captain-config/internal/control"
)

// Variant identifies a supported controller model.
type Variant string

const (
	STD10 Variant = "std10" // 10 switches, encoder + push, two expression inputs
	Mini6 Variant = "mini6" // 6 switches only
)

// MaxButtons is the family-wide button count: documents keep up to this
// many button records regardless of the variant they currently target, so
// switching a document between variants loses nothing.
const MaxButtons = 10

// ErrUnknown reports a device name this build does not know. A document
// for an unknown model must not be silently reinterpreted, so this is a
// hard error rather than a fallback.
var ErrUnknown = errors.New("unknown device")

// Parse maps a document's device field to a Variant. The empty string
// selects STD10, matching documents from before the field existed.
func Parse(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(STD10):
		return STD10, nil
	case string(Mini6):
		return Mini6, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknown, s)
}

// Variants lists the known models.
func Variants() []Variant {
	return []Variant{STD10, Mini6}
}

// ButtonCount returns the number of footswitches on the model.
func (v Variant) ButtonCount() int {
	if v == Mini6 {
		return 6
	}
	return 10
}

// HasEncoder reports whether the model carries the rotary encoder (and
// with it the push switch).
func (v Variant) HasEncoder() bool {
	return v != Mini6
}

// HasExpression reports whether the model has expression pedal inputs.
func (v Variant) HasExpression() bool {
	return v != Mini6
}

// Supports reports whether the physical control exists on this model.
// Normalization flags configurations for unsupported controls as disabled
// instead of dropping them.
func (v Variant) Supports(id control.Identity) bool {
	switch id.Class {
	case control.ClassButton:
		return id.Index >= 0 && id.Index < v.ButtonCount()
	case control.ClassEncoder, control.ClassEncoderPush:
		return v.HasEncoder()
	case control.ClassExpression:
		return v.HasExpression() && (id.Index == 0 || id.Index == 1)
	}
	return false
}

// ledsPerSwitch is how many chained NeoPixels sit under each footswitch.
const ledsPerSwitch = 3

// LEDCount returns the length of the model's pixel chain.
func (v Variant) LEDCount() int {
	return v.ButtonCount() * ledsPerSwitch
}

// LEDRange returns the pixel chain segment for a footswitch: the first
// pixel index and the number of pixels. ok is false for identities
// without LEDs (the encoder, its push and the pedals).
func (v Variant) LEDRange(id control.Identity) (start, count int, ok bool) {
	if id.Class != control.ClassButton || !v.Supports(id) {
		return 0, 0, false
	}
	return id.Index * ledsPerSwitch, ledsPerSwitch, true
}

// GridSize returns the display layout: both models render their switches
// in two rows.
func (v Variant) GridSize() (rows, cols int) {
	return 2, v.ButtonCount() / 2
}

// GridPosition returns the display row and column of a footswitch, top
// row first. ok is false for non-button identities.
func (v Variant) GridPosition(id control.Identity) (row, col int, ok bool) {
	if id.Class != control.ClassButton || !v.Supports(id) {
		return 0, 0, false
	}
	_, cols := v.GridSize()
	return id.Index / cols, id.Index % cols, true
}
