package auqa

import (
	"errors"
	"fmt"
)

// TransportError reports a failed call to the analysis server: a connection
// failure, a non-2xx status, or an undecodable body.
type TransportError struct {
	Op     string // e.g. "GET /api/files"
	Status int    // zero when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api %s returned status %d", e.Op, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("api %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("api %s failed", e.Op)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
