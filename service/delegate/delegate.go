package delegate

import (
	"context"
)

// Mode selects which prompt template the engine sends to the completion
// service. The mode is fixed by configuration; the engine never switches
// modes per task.
type Mode string

const (
	// ModeNarrative asks the service to render an approval decision
	// document; the returned text is forwarded verbatim.
	ModeNarrative Mode = "narrative"

	// ModeExtraction asks the service to flatten the order into a fixed
	// seven-field delimited record; again treated as opaque text.
	ModeExtraction Mode = "extraction"
)

// Valid reports whether the mode names a known prompt template.
func (m Mode) Valid() bool {
	return m == ModeNarrative || m == ModeExtraction
}

// Completer sends a prompt to an external text-completion service. The
// returned text is opaque to the engine; failures of any kind (timeout,
// authentication, malformed response) surface as a single error value and
// are never retried.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPayload string) (string, error)
}
