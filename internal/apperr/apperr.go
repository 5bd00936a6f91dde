package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the chat and retrieval domain. Handlers map these to
// close codes or error frames; everything else is treated as internal.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrMembership     = errors.New("not a participant of this room or topic")
	ErrValidation     = errors.New("invalid frame or request")
	ErrDecrypt        = errors.New("message failed decryption")
	ErrDownstream     = errors.New("downstream AI or index call failed")
	ErrPersistence    = errors.New("chat log write failed")

	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrExtractionFailed  = errors.New("text extraction failed")
)

// Wrap annotates err with a sentinel so callers can classify with errors.Is
// while keeping the original cause in the chain.
func Wrap(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Wrapf is Wrap with a formatted message instead of a cause error.
func Wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
