package svxconf

import (
	"fmt"
	"strings"
)

// ValidationError is returned when an option name is not in a section's
// allow-list. The record is left unchanged when this is returned.
type ValidationError struct {
	Option  string
	Section string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("option %q is not valid for section %q", e.Option, e.Section)
}

// PreconditionError is returned when an operation is invoked on a record
// that is missing options the operation requires.
type PreconditionError struct {
	Op      string
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s requires %s to be set", e.Op, strings.Join(e.Missing, " and "))
}
