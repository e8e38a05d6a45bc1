package transfer

import (
	"fmt"
	"strings"
)

// Error is a failed transfer. Kind is one of errors.ErrSizeUnknown,
// errors.ErrNetwork or errors.ErrIO and matches with errors.Is.
type Error struct {
	Kind error
	URL  string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("transfer")
	if e.URL != "" {
		fmt.Fprintf(&b, " %s", e.URL)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " to %s", e.Path)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
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
