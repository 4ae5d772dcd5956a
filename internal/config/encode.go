package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcascone/captain-config/internal/control"
)

// The *JSON types mirror the document schema for writing. A normalized
// set writes every concrete field so the firmware never has to guess;
// only true optionals (an inherited channel, continuous steps) are
// omitted.

type stateJSON struct {
	Color       *string `json:"color,omitempty"`
	CCOn        *int    `json:"cc_on,omitempty"`
	CCOff       *int    `json:"cc_off,omitempty"`
	VelocityOn  *int    `json:"velocity_on,omitempty"`
	VelocityOff *int    `json:"velocity_off,omitempty"`
	Program     *int    `json:"program,omitempty"`
	Step        *int    `json:"step,omitempty"`
}

type controlJSON struct {
	Label   string `json:"label"`
	Color   string `json:"color"`
	Mode    string `json:"mode"`
	OffMode string `json:"off_mode"`
	Enabled *bool  `json:"enabled,omitempty"`
	Channel *int   `json:"channel,omitempty"`
	Type    string `json:"type"`

	CC          *int `json:"cc,omitempty"`
	CCOn        *int `json:"cc_on,omitempty"`
	CCOff       *int `json:"cc_off,omitempty"`
	Note        *int `json:"note,omitempty"`
	VelocityOn  *int `json:"velocity_on,omitempty"`
	VelocityOff *int `json:"velocity_off,omitempty"`
	Program     *int `json:"program,omitempty"`
	Step        *int `json:"step,omitempty"`

	Keytimes int         `json:"keytimes,omitempty"`
	States   []stateJSON `json:"states,omitempty"`

	Min       *int   `json:"min,omitempty"`
	Max       *int   `json:"max,omitempty"`
	Initial   *int   `json:"initial,omitempty"`
	Steps     *int   `json:"steps,omitempty"`
	Polarity  string `json:"polarity,omitempty"`
	Threshold *int   `json:"threshold,omitempty"`

	Push *controlJSON `json:"push,omitempty"`
}

type expressionJSON struct {
	Exp1 *controlJSON `json:"exp1,omitempty"`
	Exp2 *controlJSON `json:"exp2,omitempty"`
}

type documentJSON struct {
	Device        string          `json:"device"`
	GlobalChannel int             `json:"global_channel"`
	Buttons       []controlJSON   `json:"buttons"`
	Encoder       *controlJSON    `json:"encoder,omitempty"`
	Expression    *expressionJSON `json:"expression,omitempty"`
	Display       json.RawMessage `json:"display,omitempty"`
}

func intp(v int) *int { return &v }

func encodeState(st control.StateOverride, kind control.Kind) stateJSON {
	var out stateJSON
	if st.Color != nil {
		s := string(*st.Color)
		out.Color = &s
	}
	on, off := st.On, st.Off
	switch kind {
	case control.KindNote:
		if on != nil {
			out.VelocityOn = intp(*on)
		}
		if off != nil {
			out.VelocityOff = intp(*off)
		}
	default:
		if on != nil {
			out.CCOn = intp(*on)
		}
		if off != nil {
			out.CCOff = intp(*off)
		}
	}
	if st.Program != nil {
		out.Program = intp(*st.Program)
	}
	if st.Step != nil {
		out.Step = intp(*st.Step)
	}
	return out
}

func encodeControl(c *control.Config) controlJSON {
	out := controlJSON{
		Label:    c.Label,
		Color:    string(c.Color),
		Mode:     string(c.Mode),
		OffMode:  string(c.OffMode),
		Type:     string(c.Message.Kind()),
		Keytimes: len(c.States),
	}
	if !c.Enabled {
		f := false
		out.Enabled = &f
	}
	if c.Channel != nil {
		out.Channel = intp(*c.Channel)
	}

	switch m := c.Message.(type) {
	case control.CC:
		out.CC = intp(m.Controller)
		out.CCOn = intp(m.On)
		out.CCOff = intp(m.Off)
	case control.Note:
		out.Note = intp(m.Key)
		out.VelocityOn = intp(m.OnVelocity)
		out.VelocityOff = intp(m.OffVelocity)
	case control.Program:
		out.Program = intp(m.Number)
	case control.ProgramInc:
		out.Step = intp(m.Step)
	case control.ProgramDec:
		out.Step = intp(m.Step)
	}

	overridden := false
	for _, st := range c.States {
		if !st.IsZero() {
			overridden = true
			break
		}
	}
	if overridden {
		out.States = make([]stateJSON, len(c.States))
		for i, st := range c.States {
			out.States[i] = encodeState(st, c.Message.Kind())
		}
	}

	if c.Sweep != nil {
		out.Min = intp(c.Sweep.Min)
		out.Max = intp(c.Sweep.Max)
		out.Initial = intp(c.Sweep.Initial)
		if c.Sweep.Steps > 1 {
			out.Steps = intp(c.Sweep.Steps)
		}
	}
	if c.Response != nil {
		out.Min = intp(c.Response.Min)
		out.Max = intp(c.Response.Max)
		out.Polarity = string(c.Response.Polarity)
		out.Threshold = intp(c.Response.Threshold)
	}
	return out
}

// Encode renders a normalized set back into document form. display is
// carried through verbatim from the source document, if any.
func Encode(set *control.Set, display json.RawMessage) ([]byte, error) {
	doc := documentJSON{
		Device:        set.Device,
		GlobalChannel: set.Channel,
		Display:       display,
	}
	for _, c := range set.Buttons() {
		doc.Buttons = append(doc.Buttons, encodeControl(c))
	}
	if enc := set.Find(control.Encoder()); enc != nil {
		ej := encodeControl(enc)
		if push := set.Find(control.EncoderPush()); push != nil {
			pj := encodeControl(push)
			ej.Push = &pj
		}
		doc.Encoder = &ej
	}
	exp1 := set.Find(control.Expression(0))
	exp2 := set.Find(control.Expression(1))
	if exp1 != nil || exp2 != nil {
		var ex expressionJSON
		if exp1 != nil {
			v := encodeControl(exp1)
			ex.Exp1 = &v
		}
		if exp2 != nil {
			v := encodeControl(exp2)
			ex.Exp2 = &v
		}
		doc.Expression = &ex
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes the encoded document to path, ready for the
// controller's config.json slot.
func WriteFile(path string, set *control.Set, display json.RawMessage) error {
	data, err := Encode(set, display)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
