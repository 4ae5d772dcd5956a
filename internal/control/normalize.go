package control

import (
	"fmt"
	"strconv"

	"github.com/mcascone/captain-config/internal/colors"
)

// DefaultLabel returns the label a control is born with: buttons show
// their 1-based position, the rest use the unit's silkscreen names.
func DefaultLabel(id Identity) string {
	switch id.Class {
	case ClassEncoder:
		return "ENC"
	case ClassEncoderPush:
		return "PUSH"
	case ClassExpression:
		return fmt.Sprintf("EXP%d", id.Index+1)
	default:
		return strconv.Itoa(id.Index + 1)
	}
}

// Normalize turns one raw control record into a complete Config. It is
// total: any value it cannot use degrades to the field's default or is
// clamped into range, never failing the record. It is also idempotent:
// encoding a normalized control back to its document form and normalizing
// again yields the identical Config. Diagnostics report what had to be
// repaired; they never indicate failure.
//
// Variant gating (Config.Disabled) is the caller's job: it depends on the
// device the whole document targets, not on the record itself.
func Normalize(raw Raw, id Identity) (*Config, []Diagnostic) {
	var diags []Diagnostic
	cfg := &Config{
		Identity: id,
		Enabled:  raw.Enabled.Or(true),
		Mode:     ParseMode(raw.Mode.Or(""), DefaultMode(id)),
		OffMode:  ParseOffMode(raw.OffMode.Or("")),
		Label:    capLabel(raw.Label.Or(DefaultLabel(id))),
		Color:    colors.Parse(raw.Color.Or(string(colors.Default))),
	}
	if raw.Channel.Set {
		ch := clampInt(raw.Channel.V, MinChannel, MaxChannel)
		cfg.Channel = &ch
	}

	kind := KindCC
	if raw.Type.Set {
		k, ok := ParseKind(raw.Type.V)
		if !ok {
			diags = append(diags, Diagnostic{
				Path:    id.Field("type"),
				Code:    CodeUnknownType,
				Message: fmt.Sprintf("unknown message type %q, falling back to %q", raw.Type.V, KindCC),
			})
		}
		kind = k
	}
	cfg.Message = normalizeMessage(kind, raw, id)

	var sdiags []Diagnostic
	cfg.States, sdiags = normalizeKeytimes(raw, id, kind)
	diags = append(diags, sdiags...)

	switch id.Class {
	case ClassEncoder:
		var d []Diagnostic
		cfg.Sweep, d = normalizeSweep(raw, id)
		diags = append(diags, d...)
	case ClassExpression:
		var d []Diagnostic
		cfg.Response, d = normalizeResponse(raw, id)
		diags = append(diags, d...)
	}

	return cfg, diags
}

// normalizeMessage reads only the fields belonging to kind, so switching a
// record's type discards whatever the other kinds had stored.
func normalizeMessage(kind Kind, raw Raw, id Identity) Message {
	switch kind {
	case KindNote:
		return Note{
			Key:         clampInt(raw.Note.Or(60), 0, 127),
			OnVelocity:  clampInt(raw.VelocityOn.Or(127), 0, 127),
			OffVelocity: clampInt(raw.VelocityOff.Or(0), 0, 127),
		}
	case KindProgram:
		return Program{Number: clampInt(raw.Program.Or(0), 0, 127)}
	case KindProgramInc:
		return ProgramInc{Step: clampInt(raw.Step.Or(1), 1, 127)}
	case KindProgramDec:
		return ProgramDec{Step: clampInt(raw.Step.Or(1), 1, 127)}
	default:
		return CC{
			Controller: clampInt(raw.CC.Or(DefaultController(id)), 0, 127),
			On:         clampInt(raw.CCOn.Or(127), 0, 127),
			Off:        clampInt(raw.CCOff.Or(0), 0, 127),
		}
	}
}

// normalizeKeytimes sizes the state list to the requested keytime count
// and validates each state's overrides against the active kind.
func normalizeKeytimes(raw Raw, id Identity, kind Kind) ([]StateOverride, []Diagnostic) {
	var diags []Diagnostic
	count := 1
	if raw.Keytimes.Set {
		count = clampInt(raw.Keytimes.V, 1, MaxKeytimes)
		if count != raw.Keytimes.V {
			diags = append(diags, Diagnostic{
				Path:    id.Field("keytimes"),
				Code:    CodeKeytimesRange,
				Message: fmt.Sprintf("keytimes %d outside 1..%d, clamped to %d", raw.Keytimes.V, MaxKeytimes, count),
			})
		}
	}
	states := make([]StateOverride, count)
	for i := 0; i < count && i < len(raw.States); i++ {
		states[i] = normalizeState(raw.States[i], kind)
	}
	return states, diags
}

func normalizeState(rs RawState, kind Kind) StateOverride {
	var st StateOverride
	if rs.Color.Set {
		c := colors.Parse(rs.Color.V)
		st.Color = &c
	}
	switch kind {
	case KindNote:
		st.On = optClamp(rs.VelocityOn, 0, 127)
		st.Off = optClamp(rs.VelocityOff, 0, 127)
	case KindProgram:
		st.Program = optClamp(rs.Program, 0, 127)
	case KindProgramInc, KindProgramDec:
		st.Step = optClamp(rs.Step, 1, 127)
	default:
		st.On = optClamp(rs.CCOn, 0, 127)
		st.Off = optClamp(rs.CCOff, 0, 127)
	}
	return st
}
