package control

import "fmt"

// Sweep is the encoder's output shaping. The rotation tracks an internal
// 0..127 position seeded from Initial; in continuous mode every change is
// emitted as-is, while Steps > 1 quantizes the travel into that many
// detent slots and emits the slot number at each boundary crossing.
// Min and Max document the range the host should expect.
type Sweep struct {
	Min     int
	Max     int
	Initial int
	Steps   int // 0 or 1 = continuous
}

// Stepped reports whether the sweep emits slot numbers instead of raw
// positions.
func (s *Sweep) Stepped() bool {
	return s != nil && s.Steps > 1
}

// Slot returns the detent slot for an internal 0..127 position. The top
// slot absorbs the remainder when 128 does not divide evenly.
func (s *Sweep) Slot(position int) int {
	if !s.Stepped() {
		return 0
	}
	position = clampInt(position, 0, 127)
	size := 128 / s.Steps
	slot := position / size
	if slot > s.Steps-1 {
		slot = s.Steps - 1
	}
	return slot
}

func normalizeSweep(raw Raw, id Identity) (*Sweep, []Diagnostic) {
	var diags []Diagnostic
	sw := &Sweep{
		Min: clampInt(raw.Min.Or(0), 0, 127),
		Max: clampInt(raw.Max.Or(127), 0, 127),
	}
	if sw.Max < sw.Min {
		diags = append(diags, Diagnostic{
			Path:    id.Field("max"),
			Code:    CodeSweepRange,
			Message: fmt.Sprintf("max %d is below min %d, swapping", sw.Max, sw.Min),
		})
		sw.Min, sw.Max = sw.Max, sw.Min
	}
	sw.Initial = clampInt(raw.Initial.Or(64), sw.Min, sw.Max)
	if raw.Initial.Set && (raw.Initial.V < sw.Min || raw.Initial.V > sw.Max) {
		diags = append(diags, Diagnostic{
			Path:    id.Field("initial"),
			Code:    CodeSweepRange,
			Message: fmt.Sprintf("initial %d outside %d..%d, clamped to %d", raw.Initial.V, sw.Min, sw.Max, sw.Initial),
		})
	}
	// steps 0 and 1 both mean continuous; canonical form is 0.
	if v := clampInt(raw.Steps.Or(0), 0, 127); v > 1 {
		sw.Steps = v
	}
	return sw, diags
}

// Response shapes an expression pedal's calibrated travel into the value
// range it reports. Threshold is the hysteresis applied before a new value
// is worth sending.
type Response struct {
	Min       int
	Max       int
	Polarity  Polarity
	Threshold int
}

// Value maps a calibrated pedal position (0.0 resting .. 1.0 full travel)
// to the configured output range, honoring polarity. The result is always
// a valid MIDI value.
func (r *Response) Value(position float64) int {
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}
	if r.Polarity == PolarityInverted {
		position = 1 - position
	}
	v := r.Min + int(position*float64(r.Max-r.Min))
	return clampInt(v, 0, 127)
}

// ShouldSend reports whether next has moved far enough from the last sent
// value to clear the hysteresis threshold.
func (r *Response) ShouldSend(last, next int) bool {
	d := next - last
	if d < 0 {
		d = -d
	}
	return d >= r.Threshold
}

func normalizeResponse(raw Raw, id Identity) (*Response, []Diagnostic) {
	var diags []Diagnostic
	resp := &Response{
		Min:      clampInt(raw.Min.Or(0), 0, 127),
		Max:      clampInt(raw.Max.Or(127), 0, 127),
		Polarity: ParsePolarity(raw.Polarity.Or(string(PolarityNormal))),
	}
	if resp.Max < resp.Min {
		diags = append(diags, Diagnostic{
			Path:    id.Field("max"),
			Code:    CodeSweepRange,
			Message: fmt.Sprintf("max %d is below min %d, swapping", resp.Max, resp.Min),
		})
		resp.Min, resp.Max = resp.Max, resp.Min
	}
	resp.Threshold = clampInt(raw.Threshold.Or(2), 0, 64)
	if raw.Threshold.Set && resp.Threshold != raw.Threshold.V {
		diags = append(diags, Diagnostic{
			Path:    id.Field("threshold"),
			Code:    CodeThresholdRange,
			Message: fmt.Sprintf("threshold %d outside 0..64, clamped to %d", raw.Threshold.V, resp.Threshold),
		})
	}
	return resp, diags
}
