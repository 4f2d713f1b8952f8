package vehicle

import "time"

// Availability summarises whether a signal delivered usable data.
type Availability int

const (
	AvailabilityUnknown Availability = iota
	Available
	Unavailable
	Unimplemented
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	case Unimplemented:
		return "Unimplemented"
	default:
		return "Unknown"
	}
}

func (a Availability) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// ListenerStatus is a diagnostics record for one subscribed signal. It never
// drives control flow.
type ListenerStatus struct {
	Name         string       `json:"name"`
	Active       bool         `json:"active"`
	LastUpdated  *time.Time   `json:"last_updated,omitempty"`
	Availability Availability `json:"availability"`
}

// NewListenerStatus returns the inactive status a signal starts with.
func NewListenerStatus(name string) ListenerStatus {
	return ListenerStatus{Name: name, Availability: AvailabilityUnknown}
}
