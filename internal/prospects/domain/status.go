// Package domain provides core business rules for the prospects bounded
// context: the prospect lifecycle, the outreach cadence state machine and
// the outreach error taxonomy.
package domain

import "fmt"

// ProspectStatus is the persisted lifecycle status of a community prospect.
// Prospects are never hard-deleted; retirement is a status transition so the
// outreach audit trail stays reconstructable.
type ProspectStatus int

const (
	// StatusNew is a freshly discovered or imported prospect.
	StatusNew ProspectStatus = iota
	// StatusScored has a computed fit score but no outreach yet.
	StatusScored
	// StatusContacted has at least one outreach email sent.
	StatusContacted
	// StatusResponded replied to outreach; automatic sends halt.
	StatusResponded
	// StatusConverted became an active partner; permanently ineligible for
	// further outreach.
	StatusConverted
	// StatusRejected was reviewed and dismissed by an admin.
	StatusRejected
	// StatusUnreachable has no working contact channel.
	StatusUnreachable
)

var statusNames = map[ProspectStatus]string{
	StatusNew:         "New",
	StatusScored:      "Scored",
	StatusContacted:   "Contacted",
	StatusResponded:   "Responded",
	StatusConverted:   "Converted",
	StatusRejected:    "Rejected",
	StatusUnreachable: "Unreachable",
}

// String returns the canonical name used in storage and transport.
func (s ProspectStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ProspectStatus(%d)", int(s))
}

// ParseStatus converts a stored status name back to its enum value.
func ParseStatus(name string) (ProspectStatus, error) {
	for status, candidate := range statusNames {
		if candidate == name {
			return status, nil
		}
	}
	return StatusNew, fmt.Errorf("unknown prospect status %q", name)
}

// IsTerminal reports whether the status permanently excludes the prospect
// from automatic outreach.
func (s ProspectStatus) IsTerminal() bool {
	switch s {
	case StatusResponded, StatusConverted, StatusRejected, StatusUnreachable:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a manual or automatic transition from one
// status to another is allowed. Converted is a dead end: converted partners
// never re-enter the pipeline.
func CanTransition(from, to ProspectStatus) bool {
	if from == to {
		return false
	}
	if from == StatusConverted {
		return false
	}

	switch to {
	case StatusNew:
		// Only a manual cadence reset re-opens a prospect.
		return from == StatusRejected || from == StatusUnreachable || from == StatusResponded
	case StatusScored:
		return from == StatusNew
	case StatusContacted:
		// Outreach requires a fit score first.
		return from == StatusScored
	case StatusResponded, StatusConverted, StatusRejected, StatusUnreachable:
		return true
	default:
		return false
	}
}
