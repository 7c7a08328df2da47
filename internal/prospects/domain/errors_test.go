package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDomainErrorsDispatchByType(t *testing.T) {
	id := uuid.New()
	cause := errors.New("model down")

	tests := []struct {
		name string
		err  error
		as   func(error) bool
	}{
		{"not due", NotDueError{ProspectID: id, EligibleAt: time.Now()}, func(err error) bool {
			var target NotDueError
			return errors.As(err, &target) && target.ProspectID == id
		}},
		{"already terminal", AlreadyTerminalError{ProspectID: id, Status: StatusConverted}, func(err error) bool {
			var target AlreadyTerminalError
			return errors.As(err, &target) && target.Status == StatusConverted
		}},
		{"content generation", ContentGenerationError{Step: 2, Err: cause}, func(err error) bool {
			var target ContentGenerationError
			return errors.As(err, &target) && errors.Is(err, cause)
		}},
		{"transport", TransportError{Recipient: "a@b.org", Err: cause}, func(err error) bool {
			var target TransportError
			return errors.As(err, &target) && errors.Is(err, cause)
		}},
		{"concurrent modification", ConcurrentModificationError{ProspectID: id}, func(err error) bool {
			var target ConcurrentModificationError
			return errors.As(err, &target) && target.ProspectID == id
		}},
		{"validation", ValidationError{Field: "email", Reason: "missing"}, func(err error) bool {
			var target ValidationError
			return errors.As(err, &target) && target.Field == "email"
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Error() == "" {
				t.Fatalf("empty error message")
			}
			wrapped := fmt.Errorf("send failed: %w", tc.err)
			if !tc.as(wrapped) {
				t.Fatalf("errors.As did not match %T through a wrap", tc.err)
			}
		})
	}
}
