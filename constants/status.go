package constants

// ProcessingStatus is the lifecycle state of a career document.
type ProcessingStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    ProcessingStatus = "pending"    // waiting for the processor
	StatusProcessing ProcessingStatus = "processing" // claimed by a processor
	StatusCompleted  ProcessingStatus = "completed"  // terminal success
	StatusFailed     ProcessingStatus = "failed"     // terminal failure
)

var allStatuses = []ProcessingStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}

// Statuses returns every processing status in lifecycle order.
func Statuses() []ProcessingStatus {
	out := make([]ProcessingStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsTerminal reports whether no automatic transition leaves s.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s ProcessingStatus) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}
