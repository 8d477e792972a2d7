package chore

import (
	"errors"
	"fmt"
	"strings"
)

const ErrCodeAmbiguousName = "AMBIGUOUS_NAME"

// AmbiguousNameError is returned by FindByName when a query matches more than
// one task and none of them exactly.
type AmbiguousNameError struct {
	Query      string
	Candidates []string
}

func (e AmbiguousNameError) Error() string {
	return fmt.Sprintf("task name %q is ambiguous: matches %s", e.Query, strings.Join(e.Candidates, ", "))
}

func (e AmbiguousNameError) Code() string {
	return ErrCodeAmbiguousName
}

func (e AmbiguousNameError) Message() string {
	return "task name is ambiguous"
}

func (e AmbiguousNameError) Temporary() bool {
	return false
}

// IsAmbiguous reports whether err is an AmbiguousNameError
func IsAmbiguous(err error) bool {
	var target AmbiguousNameError
	return errors.As(err, &target)
}
