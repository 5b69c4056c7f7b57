package form

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// ValidationError blocks a submission before the store is contacted.
type ValidationError struct {
	Missing []string // names of empty required fields ("title" included)
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SaveError is the inline failure shown when the store rejects a submit.
type SaveError struct {
	Message string
	Err     error
}

func (e *SaveError) Error() string { return e.Message }

func (e *SaveError) Unwrap() error { return e.Err }

// Validate checks that the title and every required field are non-empty.
func (f *Form[M]) Validate() error {
	var missing []string
	if strings.TrimSpace(f.title) == "" {
		missing = append(missing, "title")
	}
	required := f.schema.Required()
	for _, fd := range required {
		if isEmpty(f.fields[fd.Name]) {
			missing = append(missing, fd.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Missing: missing, Message: requiredMessage(required)}
}

// requiredMessage renders "Title and service name are required" or
// "Title, full name, and job title are required".
func requiredMessage(required []types.Field) string {
	labels := []string{"Title"}
	for _, fd := range required {
		labels = append(labels, strings.ToLower(fd.Label))
	}
	var list string
	switch len(labels) {
	case 1:
		return "Title is required"
	case 2:
		list = labels[0] + " and " + labels[1]
	default:
		list = strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
	}
	return fmt.Sprintf("%s are required", list)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	}
	return false
}
