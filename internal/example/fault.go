package example

import "strings"

// FaultKind classifies the ways an example run can fail.
type FaultKind string

const (
	FaultExit    FaultKind = "ExitError"
	FaultTimeout FaultKind = "Timeout"
	FaultStart   FaultKind = "StartError"
	FaultPrepare FaultKind = "PrepareError"
	FaultPanic   FaultKind = "Panic"
)

// Fault describes a failed example run.
type Fault struct {
	Kind    FaultKind
	Message string
	// Stderr holds whatever the example wrote to standard error.
	Stderr string
}

// String renders the fault as "<Kind>: <Message>" followed by the captured standard error.
// The result always ends with a newline.
func (f *Fault) String() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	b.WriteString(": ")
	b.WriteString(f.Message)
	b.WriteString("\n")
	if f.Stderr != "" {
		b.WriteString(f.Stderr)
		if !strings.HasSuffix(f.Stderr, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
