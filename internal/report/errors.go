package report

// MalformedDataError reports a payload that could not be read as JSON.
// Normalize never returns it.
type MalformedDataError struct {
	Err error
}

func (e *MalformedDataError) Error() string {
	if e.Err == nil {
		return "malformed report"
	}
	return "malformed report: " + e.Err.Error()
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}
