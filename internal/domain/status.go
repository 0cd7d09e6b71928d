package domain

import "errors"

// Completion statuses shared by every assignment table.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusExcused   = "excused"
)

// TerminalStatuses never transition further.
var TerminalStatuses = []string{StatusCompleted, StatusExcused}

var ErrInvalidTransition = errors.New("invalid completion status transition")

// IsTerminal reports whether status is completed or excused.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusExcused
}

// AllowsExcuse reports whether a domain supports the excused status.
// Equipment must be returned and policies acknowledged; neither can be excused.
func AllowsExcuse(k Kind) bool {
	return k == KindEvent || k == KindTraining
}

// CheckTransition validates a completion status change for the given domain.
func CheckTransition(k Kind, from, to string) error {
	if IsTerminal(from) {
		return ErrInvalidTransition
	}
	switch to {
	case StatusCompleted:
		return nil
	case StatusExcused:
		if AllowsExcuse(k) {
			return nil
		}
	}
	return ErrInvalidTransition
}

// ValidKind reports whether k is one of the four assignable domains.
func ValidKind(k Kind) bool {
	for _, x := range Kinds {
		if x == k {
			return true
		}
	}
	return false
}
