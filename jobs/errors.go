package jobs

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a job, click target or history entry does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a job with the same title/company, URL or slug
// is already active
var ErrDuplicate = errors.New("job already exists")

// ValidationError lists the form fields that failed validation
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Fields, ", ")
}
