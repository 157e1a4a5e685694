package ordine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownField = errors.New("unknown field")

// RejectedError is returned by Submit when at least one field fails. It carries the
// result of every field so all messages can be shown at once.
type RejectedError struct {
	Result ValidationResult
}

func (e *RejectedError) Error() string {
	errs := e.Result.Errors()
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, string(field))
	}
	slices.Sort(fields)
	return fmt.Sprintf("order rejected: invalid %s", strings.Join(fields, ", "))
}
