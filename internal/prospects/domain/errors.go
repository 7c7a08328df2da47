package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotDueError rejects a send attempt for a prospect whose follow-up offset
// has not elapsed. Caller error; never retried automatically.
type NotDueError struct {
	ProspectID uuid.UUID
	EligibleAt time.Time
}

func (e NotDueError) Error() string {
	return fmt.Sprintf("prospect %s not due until %s", e.ProspectID, e.EligibleAt.Format(time.RFC3339))
}

// AlreadyTerminalError rejects a send attempt for a prospect whose status or
// cadence position permanently excludes automatic outreach.
type AlreadyTerminalError struct {
	ProspectID uuid.UUID
	Status     ProspectStatus
	Exhausted  bool
}

func (e AlreadyTerminalError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("prospect %s has exhausted its cadence", e.ProspectID)
	}
	return fmt.Sprintf("prospect %s is %s and ineligible for outreach", e.ProspectID, e.Status)
}

// ContentGenerationError wraps a failure of the external text generation
// backend. Retryable later; callers must not fall back to blank content.
type ContentGenerationError struct {
	Step int
	Err  error
}

func (e ContentGenerationError) Error() string {
	return fmt.Sprintf("content generation for step %d failed: %v", e.Step, e.Err)
}

func (e ContentGenerationError) Unwrap() error { return e.Err }

// TransportError wraps an email delivery failure. The attempt is recorded;
// retry happens on a later cadence pass.
type TransportError struct {
	Recipient string
	Err       error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("email delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// ConcurrentModificationError signals that the optimistic state check failed
// at commit time: another pass advanced the prospect first. Treated as a
// no-op skip, not a hard failure.
type ConcurrentModificationError struct {
	ProspectID uuid.UUID
}

func (e ConcurrentModificationError) Error() string {
	return fmt.Sprintf("prospect %s was modified concurrently", e.ProspectID)
}

// ValidationError describes malformed prospect or import-row data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
