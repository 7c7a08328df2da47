package domain

import (
	"fmt"
	"time"
)

// StepIntent describes the framing of a cadence step.
type StepIntent string

const (
	IntentInitial  StepIntent = "Initial"
	IntentFollowUp StepIntent = "Follow-up"
	IntentValueAdd StepIntent = "Value-add"
	IntentFinal    StepIntent = "Final"
)

// IntentForStep maps a cadence step (1-4) to its outreach framing.
func IntentForStep(step int) (StepIntent, error) {
	switch step {
	case 1:
		return IntentInitial, nil
	case 2:
		return IntentFollowUp, nil
	case 3:
		return IntentValueAdd, nil
	case 4:
		return IntentFinal, nil
	default:
		return "", fmt.Errorf("cadence step %d out of range", step)
	}
}

// CadencePhase is the derived position of a prospect in the outreach cadence.
type CadencePhase int

const (
	// PhaseEligible means the next cadence step may be sent now.
	PhaseEligible CadencePhase = iota
	// PhaseAwaiting means a step was sent and its follow-up offset has not
	// elapsed yet.
	PhaseAwaiting
	// PhaseExhausted means all steps were sent with no response and the
	// closeout window has elapsed; only manual re-engagement remains.
	PhaseExhausted
	// PhaseHalted means the prospect status ended automatic outreach
	// (responded, converted, rejected, unreachable).
	PhaseHalted
)

// String returns a readable phase name.
func (p CadencePhase) String() string {
	switch p {
	case PhaseEligible:
		return "Eligible"
	case PhaseAwaiting:
		return "AwaitingNextStep"
	case PhaseExhausted:
		return "Exhausted"
	case PhaseHalted:
		return "Halted"
	default:
		return fmt.Sprintf("CadencePhase(%d)", int(p))
	}
}

// CadenceState is the resolved cadence position of a prospect at a point in
// time. NextStep is meaningful only in PhaseEligible; EligibleAt only in
// PhaseAwaiting.
type CadenceState struct {
	Phase      CadencePhase
	NextStep   int
	EligibleAt time.Time
}

// ResolveCadence derives the cadence state from persisted prospect fields.
// stepsSent is the number of cadence emails already sent (0..maxSteps);
// nextEligibleAt is nil until the first send.
//
// The switch over phases is exhaustive by construction: every combination of
// status, step count and clock lands in exactly one phase.
func ResolveCadence(status ProspectStatus, stepsSent int, nextEligibleAt *time.Time, maxSteps int, now time.Time) CadenceState {
	if status.IsTerminal() {
		return CadenceState{Phase: PhaseHalted}
	}

	if stepsSent <= 0 {
		return CadenceState{Phase: PhaseEligible, NextStep: 1}
	}

	// A sent step always records its follow-up horizon; a missing horizon
	// means legacy data, treated as immediately due.
	eligibleAt := now
	if nextEligibleAt != nil {
		eligibleAt = *nextEligibleAt
	}

	if stepsSent >= maxSteps {
		if now.Before(eligibleAt) {
			return CadenceState{Phase: PhaseAwaiting, EligibleAt: eligibleAt}
		}
		return CadenceState{Phase: PhaseExhausted}
	}

	if now.Before(eligibleAt) {
		return CadenceState{Phase: PhaseAwaiting, EligibleAt: eligibleAt}
	}
	return CadenceState{Phase: PhaseEligible, NextStep: stepsSent + 1}
}

// NextEligibleAt computes the follow-up horizon after sending the given step:
// the wait before step+1 for intermediate steps, or the closeout window after
// the final step. offsets holds the per-step waits in days (len maxSteps-1).
func NextEligibleAt(sentStep int, sentAt time.Time, offsets []int, exhaustAfterDays, maxSteps int) time.Time {
	if sentStep >= maxSteps {
		return sentAt.AddDate(0, 0, exhaustAfterDays)
	}
	idx := sentStep - 1
	if idx < 0 || idx >= len(offsets) {
		return sentAt.AddDate(0, 0, exhaustAfterDays)
	}
	return sentAt.AddDate(0, 0, offsets[idx])
}
