package sleep

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SessionInput is the raw user input for creating or editing a session.
type SessionInput struct {
	Start time.Time `validate:"required"`
	End   time.Time `validate:"omitempty,gtfield=Start"`
}

// ValidateInput checks user supplied bounds at the edit boundary.
// A nil start is rejected, as is an end before the start and an open
// session that begins in the future.
func ValidateInput(start, end *time.Time, now time.Time) error {
	if start == nil {
		return ErrStartMissing
	}
	in := SessionInput{Start: *start}
	if end != nil {
		in.End = *end
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Start":
					return ErrStartMissing
				case "End":
					return ErrEndBeforeStart
				}
			}
		}
		return err
	}
	if end == nil && start.After(now) {
		return ErrFutureInProgress
	}
	return nil
}
