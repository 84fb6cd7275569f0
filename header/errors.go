package header

import "fmt"

// ParseError reports a malformed header. It is never wrapped by callers of
// ParseHeader; it surfaces as-is so a caller can decide whether to reject
// the handshake outright.
type ParseError struct {
	// Input is the full header string that failed to parse.
	Input string
	// Offset is the byte position within Input where the problem was
	// detected.
	Offset int
	// Reason is a short, human-readable description of what went wrong.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("header: %s at offset %d in %q", e.Reason, e.Offset, e.Input)
}
