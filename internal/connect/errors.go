// internal/connect/errors.go

package connect

import "fmt"

// FailureKind klasyfikuje przyczynę nieudanej próby połączenia.
type FailureKind int

const (
	FailureAuth FailureKind = iota
	FailureNegotiation
	FailureTimeout
	FailureTransport
	FailureUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case FailureAuth:
		return "authentication"
	case FailureNegotiation:
		return "negotiation"
	case FailureTimeout:
		return "timeout"
	case FailureTransport:
		return "transport"
	default:
		return "unexpected"
	}
}

// AttemptError reprezentuje sklasyfikowany błąd pojedynczej próby połączenia.
// Message jest komunikatem dla operatora, Err przechowuje błąd źródłowy.
type AttemptError struct {
	Kind     FailureKind
	Protocol string
	Message  string
	Err      error
}

func (e *AttemptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

func newAttemptError(kind FailureKind, protocol, message string, err error) *AttemptError {
	return &AttemptError{
		Kind:     kind,
		Protocol: protocol,
		Message:  message,
		Err:      err,
	}
}
