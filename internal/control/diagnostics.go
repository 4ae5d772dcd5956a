package control

// DiagnosticCode classifies a validation diagnostic.
type DiagnosticCode string

const (
	CodeUnknownType         DiagnosticCode = "unknown-type"
	CodeKeytimesRange       DiagnosticCode = "keytimes-range"
	CodeDuplicateAssignment DiagnosticCode = "duplicate-assignment"
	CodeSweepRange          DiagnosticCode = "sweep-range"
	CodeThresholdRange      DiagnosticCode = "threshold-range"
)

// Diagnostic is a recoverable configuration problem. Normalization has
// already repaired the value the diagnostic points at; the diagnostic
// records what was wrong so an editor can surface it next to the field.
// Diagnostics never block loading or editing, only writing back to a
// device.
type Diagnostic struct {
	Path    string // document path, e.g. "buttons[2].cc"
	Code    DiagnosticCode
	Message string
}

func (d Diagnostic) String() string {
	return d.Path + ": " + d.Message
}
