package service

import "errors"

var (
	ErrEmptyQuestion   = errors.New("question must not be empty")
	ErrMissingCluster  = errors.New("kusto cluster must not be empty")
	ErrMissingDatabase = errors.New("kusto database must not be empty")
	ErrEmptyPrompt     = errors.New("prompt must not be empty")
	ErrNoCompletion    = errors.New("completion service returned no choices")

	// ErrAuditDisabled is returned when the sink backing a run query is off.
	ErrAuditDisabled = errors.New("audit sink not enabled")
)

// InputError marks a request rejected before any upstream call was made.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
