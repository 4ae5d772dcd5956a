package control

// MaxLabelLen is the widest label the display renders per control.
const MaxLabelLen = 6

// clampInt forces v into [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// capLabel truncates s to the display width, counting runes so multibyte
// labels do not get split mid-character.
func capLabel(s string) string {
	r := []rune(s)
	if len(r) > MaxLabelLen {
		return string(r[:MaxLabelLen])
	}
	return s
}

// optClamp clamps a present optional into [lo, hi], passing absence
// through.
func optClamp(o OptInt, lo, hi int) *int {
	if !o.Set {
		return nil
	}
	v := clampInt(o.V, lo, hi)
	return &v
}
