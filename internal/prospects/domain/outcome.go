package domain

import "fmt"

// DeliveryOutcome is the recorded result of a single outreach send attempt.
type DeliveryOutcome int

const (
	// OutcomeSent means the transport accepted the email.
	OutcomeSent DeliveryOutcome = iota
	// OutcomeFailed means content generation or delivery failed; the
	// failure reason is recorded alongside.
	OutcomeFailed
	// OutcomeSkipped means the attempt was abandoned before dispatch,
	// recorded only by administrative tooling.
	OutcomeSkipped
)

var outcomeNames = map[DeliveryOutcome]string{
	OutcomeSent:    "Sent",
	OutcomeFailed:  "Failed",
	OutcomeSkipped: "Skipped",
}

// String returns the canonical name used in storage and transport.
func (o DeliveryOutcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("DeliveryOutcome(%d)", int(o))
}

// ParseOutcome converts a stored outcome name back to its enum value.
func ParseOutcome(name string) (DeliveryOutcome, error) {
	for outcome, candidate := range outcomeNames {
		if candidate == name {
			return outcome, nil
		}
	}
	return OutcomeFailed, fmt.Errorf("unknown delivery outcome %q", name)
}
