package control

// MIDI channels are 0-based on the wire; documents use the same numbering.
const (
	MinChannel = 0
	MaxChannel = 15
)

// ResolveChannel returns the effective channel for a control given its
// parent's effective channel and the control's own override. Absent
// override means inherit. An out-of-range override is clamped before it is
// honored, so the result is always a valid channel.
func ResolveChannel(parent int, override *int) int {
	if override == nil {
		return clampInt(parent, MinChannel, MaxChannel)
	}
	return clampInt(*override, MinChannel, MaxChannel)
}
