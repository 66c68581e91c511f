package enums

import "fmt"

// QuoteStatus tracks a quote through the sales pipeline.
type QuoteStatus string

const (
	QuoteStatusDraft      QuoteStatus = "draft"
	QuoteStatusSent       QuoteStatus = "sent"
	QuoteStatusViewed     QuoteStatus = "viewed"
	QuoteStatusAccepted   QuoteStatus = "accepted"
	QuoteStatusPending    QuoteStatus = "pending"
	QuoteStatusApproved   QuoteStatus = "approved"
	QuoteStatusClosedWon  QuoteStatus = "closed_won"
	QuoteStatusClosedLost QuoteStatus = "closed_lost"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusViewed,
	QuoteStatusAccepted,
	QuoteStatusPending,
	QuoteStatusApproved,
	QuoteStatusClosedWon,
	QuoteStatusClosedLost,
}

// QuoteStatuses returns every known status in pipeline order.
func QuoteStatuses() []QuoteStatus {
	out := make([]QuoteStatus, len(validQuoteStatuses))
	copy(out, validQuoteStatuses)
	return out
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteStatus.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Won reports whether the status counts toward a project.
func (s QuoteStatus) Won() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusClosedWon
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}

// ProjectStatus is the lifecycle of a project spawned from a large won quote.
type ProjectStatus string

const (
	ProjectStatusPlanning     ProjectStatus = "planning"
	ProjectStatusInProgress   ProjectStatus = "in_progress"
	ProjectStatusInstallation ProjectStatus = "installation"
	ProjectStatusCompleted    ProjectStatus = "completed"
	ProjectStatusOnHold       ProjectStatus = "on_hold"
)

var validProjectStatuses = []ProjectStatus{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusInstallation,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

// ProjectStatuses returns every known project status.
func ProjectStatuses() []ProjectStatus {
	out := make([]ProjectStatus, len(validProjectStatuses))
	copy(out, validProjectStatuses)
	return out
}

func (s ProjectStatus) String() string {
	return string(s)
}

func (s ProjectStatus) IsValid() bool {
	for _, candidate := range validProjectStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
