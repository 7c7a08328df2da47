package domain

import (
	"testing"
	"time"
)

var cadenceNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestResolveCadenceHaltedForTerminalStatus(t *testing.T) {
	for _, status := range []ProspectStatus{StatusResponded, StatusConverted, StatusRejected, StatusUnreachable} {
		state := ResolveCadence(status, 2, nil, 4, cadenceNow)
		if state.Phase != PhaseHalted {
			t.Errorf("status %v: got phase %v, want Halted", status, state.Phase)
		}
	}
}

func TestResolveCadenceFirstStepEligible(t *testing.T) {
	state := ResolveCadence(StatusScored, 0, nil, 4, cadenceNow)
	if state.Phase != PhaseEligible {
		t.Fatalf("got phase %v, want Eligible", state.Phase)
	}
	if state.NextStep != 1 {
		t.Fatalf("got next step %d, want 1", state.NextStep)
	}
}

func TestResolveCadenceAwaiting(t *testing.T) {
	eligibleAt := cadenceNow.Add(48 * time.Hour)
	state := ResolveCadence(StatusContacted, 1, &eligibleAt, 4, cadenceNow)
	if state.Phase != PhaseAwaiting {
		t.Fatalf("got phase %v, want AwaitingNextStep", state.Phase)
	}
	if !state.EligibleAt.Equal(eligibleAt) {
		t.Fatalf("got eligibleAt %v, want %v", state.EligibleAt, eligibleAt)
	}
}

func TestResolveCadenceDueFollowUp(t *testing.T) {
	eligibleAt := cadenceNow.Add(-time.Hour)
	state := ResolveCadence(StatusContacted, 2, &eligibleAt, 4, cadenceNow)
	if state.Phase != PhaseEligible {
		t.Fatalf("got phase %v, want Eligible", state.Phase)
	}
	if state.NextStep != 3 {
		t.Fatalf("got next step %d, want 3", state.NextStep)
	}
}

func TestResolveCadenceExhausted(t *testing.T) {
	closeout := cadenceNow.Add(-time.Hour)
	state := ResolveCadence(StatusContacted, 4, &closeout, 4, cadenceNow)
	if state.Phase != PhaseExhausted {
		t.Fatalf("got phase %v, want Exhausted", state.Phase)
	}
}

func TestResolveCadenceFinalStepStillWaiting(t *testing.T) {
	closeout := cadenceNow.Add(72 * time.Hour)
	state := ResolveCadence(StatusContacted, 4, &closeout, 4, cadenceNow)
	if state.Phase != PhaseAwaiting {
		t.Fatalf("got phase %v, want AwaitingNextStep", state.Phase)
	}
}

func TestResolveCadenceMissingHorizonTreatedAsDue(t *testing.T) {
	state := ResolveCadence(StatusContacted, 1, nil, 4, cadenceNow)
	if state.Phase != PhaseEligible {
		t.Fatalf("got phase %v, want Eligible", state.Phase)
	}
	if state.NextStep != 2 {
		t.Fatalf("got next step %d, want 2", state.NextStep)
	}
}

func TestNextEligibleAtIntermediateSteps(t *testing.T) {
	offsets := []int{3, 4, 7}
	sentAt := cadenceNow

	cases := []struct {
		step     int
		wantDays int
	}{
		{1, 3},
		{2, 4},
		{3, 7},
	}
	for _, tc := range cases {
		got := NextEligibleAt(tc.step, sentAt, offsets, 14, 4)
		want := sentAt.AddDate(0, 0, tc.wantDays)
		if !got.Equal(want) {
			t.Errorf("step %d: got %v, want %v", tc.step, got, want)
		}
	}
}

func TestNextEligibleAtFinalStepUsesCloseout(t *testing.T) {
	got := NextEligibleAt(4, cadenceNow, []int{3, 4, 7}, 14, 4)
	want := cadenceNow.AddDate(0, 0, 14)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestIntentForStep(t *testing.T) {
	cases := map[int]StepIntent{
		1: IntentInitial,
		2: IntentFollowUp,
		3: IntentValueAdd,
		4: IntentFinal,
	}
	for step, want := range cases {
		got, err := IntentForStep(step)
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if got != want {
			t.Fatalf("step %d: got %q, want %q", step, got, want)
		}
	}

	for _, step := range []int{0, 5, -1} {
		if _, err := IntentForStep(step); err == nil {
			t.Errorf("step %d: expected error", step)
		}
	}
}
