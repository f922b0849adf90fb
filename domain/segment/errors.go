package segment

import "errors"

// Kind classifies a pipeline failure
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindFetch
	KindTrim
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFetch:
		return "fetch"
	case KindTrim:
		return "trim"
	default:
		return "unknown"
	}
}

var (
	// ErrMissingParameters is returned when url, start or end is absent
	ErrMissingParameters = errors.New("Missing parameters. Required: url, start, end")

	// ErrIntermediateMissing is returned when the fetcher reported success but left no file behind
	ErrIntermediateMissing = errors.New("fetched audio file not found")
)

// Error is a classified pipeline failure. Its text is the text of the wrapped error,
// so a fetch failure reads exactly as the fetcher reported it.
type Error struct {
	Kind Kind
	// ExitCode is the process exit status for trim failures, -1 if unknown
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " failure"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// exitCoder is satisfied by *exec.ExitError
type exitCoder interface {
	ExitCode() int
}

// NewFetchError classifies err as a fetch failure
func NewFetchError(err error) *Error {
	return &Error{Kind: KindFetch, ExitCode: -1, Err: err}
}

// NewTrimError classifies err as a trim failure, recovering the process exit status when present
func NewTrimError(err error) *Error {
	code := -1
	var ec exitCoder
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}
	return &Error{Kind: KindTrim, ExitCode: code, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCodeOf returns the trimmer exit status carried by err, or -1
func ExitCodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode
	}
	return -1
}

