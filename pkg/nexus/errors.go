package nexus

import (
	"fmt"
	"strings"
)

// Error is a failed provider interaction. Kind is one of errors.ErrNetwork,
// errors.ErrAuthRejected, errors.ErrProvider, errors.ErrNotFound or
// errors.ErrMalformedResponse, and matches with errors.Is.
type Error struct {
	Kind    error
	Op      string // list files, select file, download link
	URL     string
	Status  int
	Code    int // provider error code, set when Kind is errors.ErrProvider
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.URL != "" {
		fmt.Fprintf(&b, " %s", e.URL)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
