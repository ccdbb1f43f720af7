package users

import "fmt"

// ValidationError reports malformed input to a validation function. Field
// names the offending attribute when one can be singled out.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}
