package enums

import "fmt"

// CompletionSource records what drove a pending transaction to completed.
// Cash sales settle at the register; pending gateway sales settle either on a
// genuine gateway confirmation (webhook or poll) or on an explicit, audited
// operator override.
type CompletionSource string

const (
	CompletionSourceRegister CompletionSource = "register"
	CompletionSourceGateway  CompletionSource = "gateway"
	CompletionSourceManual   CompletionSource = "manual"
)

var validCompletionSources = []CompletionSource{
	CompletionSourceRegister,
	CompletionSourceGateway,
	CompletionSourceManual,
}

// String implements fmt.Stringer.
func (c CompletionSource) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CompletionSource.
func (c CompletionSource) IsValid() bool {
	for _, candidate := range validCompletionSources {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCompletionSource converts raw input into a CompletionSource.
func ParseCompletionSource(value string) (CompletionSource, error) {
	for _, candidate := range validCompletionSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid completion source %q", value)
}
