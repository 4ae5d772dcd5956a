package control

import "github.com/mcascone/captain-config/internal/colors"

// MaxKeytimes bounds the per-control cycling state count. The display
// shows the keytime as a two-digit badge, hence 99.
const MaxKeytimes = 99

// StateOverride is one keytime state: a sparse override of the control's
// color and of the value fields of its message kind. Nil fields inherit
// the base configuration. Normalization guarantees that only fields
// meaningful for the active kind are ever set (On/Off for CC and Note,
// Program for pc, Step for pc_inc/pc_dec).
type StateOverride struct {
	Color   *colors.Color
	On      *int
	Off     *int
	Program *int
	Step    *int
}

// IsZero reports whether the state overrides nothing and purely inherits.
func (s StateOverride) IsZero() bool {
	return s.Color == nil && s.On == nil && s.Off == nil && s.Program == nil && s.Step == nil
}
