package survey

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a required intake or pre-story field that is missing or unresolved
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BlankAnswersError lists, in catalog order, the questions still unanswered
type BlankAnswersError struct {
	IDs []string
}

func (e *BlankAnswersError) Error() string {
	return "unanswered questions: " + strings.Join(e.IDs, ", ")
}

// TransitionError is returned when an action is not legal from the current stage
type TransitionError struct {
	From   Stage
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from stage %s", e.Action, e.From)
}

// IsValidation reports whether err is a participant-correctable input error
func IsValidation(err error) bool {
	var ve *ValidationError
	var be *BlankAnswersError
	return errors.As(err, &ve) || errors.As(err, &be)
}
