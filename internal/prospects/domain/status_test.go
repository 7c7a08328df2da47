package domain

import "testing"

func TestStatusParseRoundTrip(t *testing.T) {
	statuses := []ProspectStatus{
		StatusNew, StatusScored, StatusContacted, StatusResponded,
		StatusConverted, StatusRejected, StatusUnreachable,
	}
	for _, status := range statuses {
		parsed, err := ParseStatus(status.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", status.String(), err)
		}
		if parsed != status {
			t.Fatalf("round trip for %q: got %v", status.String(), parsed)
		}
	}
}

func TestParseStatusUnknown(t *testing.T) {
	if _, err := ParseStatus("Archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []ProspectStatus{StatusResponded, StatusConverted, StatusRejected, StatusUnreachable}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Errorf("%v should be terminal", status)
		}
	}
	active := []ProspectStatus{StatusNew, StatusScored, StatusContacted}
	for _, status := range active {
		if status.IsTerminal() {
			t.Errorf("%v should not be terminal", status)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from ProspectStatus
		to   ProspectStatus
		want bool
	}{
		{"new to scored", StatusNew, StatusScored, true},
		{"scored to contacted", StatusScored, StatusContacted, true},
		{"new cannot be contacted unscored", StatusNew, StatusContacted, false},
		{"contacted to responded", StatusContacted, StatusResponded, true},
		{"responded to converted", StatusResponded, StatusConverted, true},
		{"contacted to rejected", StatusContacted, StatusRejected, true},
		{"new to unreachable", StatusNew, StatusUnreachable, true},
		{"rejected reopened", StatusRejected, StatusNew, true},
		{"unreachable reopened", StatusUnreachable, StatusNew, true},
		{"responded reopened", StatusResponded, StatusNew, true},
		{"converted is a dead end", StatusConverted, StatusNew, false},
		{"converted stays converted", StatusConverted, StatusRejected, false},
		{"no self transition", StatusScored, StatusScored, false},
		{"contacted cannot reopen", StatusContacted, StatusNew, false},
		{"scored cannot regress", StatusScored, StatusNew, false},
		{"contacted cannot rescore", StatusContacted, StatusScored, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransition(%v, %v) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}
