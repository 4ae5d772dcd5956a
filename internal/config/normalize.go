package config

import (
	"github.com/mcascone/captain-config/internal/control"
	"github.com/mcascone/captain-config/internal/device"
)

// Normalize produces the complete control set for a document targeting
// variant, plus every diagnostic the document earned along the way. It is
// total: any document Parse accepts normalizes without error, and
// normalizing an already-normalized set changes nothing.
//
// The button list is extended to the variant's switch count with default
// records; extra records the document already carries are kept (disabled)
// up to the family maximum of ten, so switching the device field back and
// forth never loses them. The encoder, its push switch and both pedals
// are always materialized and simply flagged disabled on models without
// the hardware.
func Normalize(doc *Document, variant device.Variant) (*control.Set, []control.Diagnostic) {
	set := &control.Set{
		Device:  string(variant),
		Channel: control.ResolveChannel(doc.GlobalChannel.Or(0), nil),
	}
	var diags []control.Diagnostic

	count := len(doc.Buttons)
	if count < variant.ButtonCount() {
		count = variant.ButtonCount()
	}
	if count > device.MaxButtons {
		count = device.MaxButtons
	}
	for i := 0; i < count; i++ {
		var raw control.Raw
		if i < len(doc.Buttons) {
			raw = doc.Buttons[i]
		}
		id := control.Button(i)
		supported := variant.Supports(id)
		diags = add(set, diags, raw, id, supported)
	}

	var enc, push control.Raw
	if doc.Encoder != nil {
		enc = *doc.Encoder
		if doc.Encoder.Push != nil {
			push = *doc.Encoder.Push
		}
	}
	diags = add(set, diags, enc, control.Encoder(), variant.HasEncoder())
	diags = add(set, diags, push, control.EncoderPush(), variant.HasEncoder())

	var exp1, exp2 control.Raw
	if doc.Expression.Exp1 != nil {
		exp1 = *doc.Expression.Exp1
	}
	if doc.Expression.Exp2 != nil {
		exp2 = *doc.Expression.Exp2
	}
	diags = add(set, diags, exp1, control.Expression(0), variant.HasExpression())
	diags = add(set, diags, exp2, control.Expression(1), variant.HasExpression())

	diags = append(diags, set.Validate()...)
	return set, diags
}

func add(set *control.Set, diags []control.Diagnostic, raw control.Raw, id control.Identity, supported bool) []control.Diagnostic {
	cfg, d := control.Normalize(raw, id)
	cfg.Disabled = !supported
	set.Controls = append(set.Controls, cfg)
	return append(diags, d...)
}
