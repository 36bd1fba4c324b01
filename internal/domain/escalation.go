package domain

import (
	"strings"
	"time"
)

// EscalationStatus enumerates lifecycle states for escalations. ACCEPTED is
// terminal as far as this service is concerned; resolution happens elsewhere.
type EscalationStatus string

const (
	EscalationStatusPending  EscalationStatus = "PENDING"
	EscalationStatusAccepted EscalationStatus = "ACCEPTED"
)

// UrgencyLevel enumerates how pressing the unresolved issue is.
type UrgencyLevel string

const (
	UrgencyNormal UrgencyLevel = "NORMAL"
	UrgencyHigh   UrgencyLevel = "HIGH"
)

// ParseUrgency normalizes a caller-supplied urgency, defaulting empty input
// to NORMAL. Unknown values are rejected at the boundary.
func ParseUrgency(raw string) (UrgencyLevel, bool) {
	switch UrgencyLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return UrgencyNormal, true
	case UrgencyNormal:
		return UrgencyNormal, true
	case UrgencyHigh:
		return UrgencyHigh, true
	default:
		return "", false
	}
}

// ConnectionMethod is the channel the operator picks to engage the user.
type ConnectionMethod string

const (
	ConnectionMethodChat  ConnectionMethod = "CHAT"
	ConnectionMethodZoom  ConnectionMethod = "ZOOM"
	ConnectionMethodPhone ConnectionMethod = "PHONE"
	ConnectionMethodEmail ConnectionMethod = "EMAIL"
)

// ParseConnectionMethod normalizes a caller-supplied connection method.
func ParseConnectionMethod(raw string) (ConnectionMethod, bool) {
	method := ConnectionMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch method {
	case ConnectionMethodChat, ConnectionMethodZoom, ConnectionMethodPhone, ConnectionMethodEmail:
		return method, true
	default:
		return "", false
	}
}

// Escalation is the aggregate for a user request for human intervention.
//
// Invariants maintained by the repository and services:
//   - FollowupCount advances by exactly one per processed follow-up pass.
//   - LastFollowupAt >= OwnerNotifiedAt.
//   - ConnectionMethod is set iff Status == ACCEPTED.
//   - Once accepted, follow-up passes never mutate the record again.
type Escalation struct {
	ID               string
	UserID           string
	UserName         string
	UserEmail        string
	Summary          string
	Urgency          UrgencyLevel
	Status           EscalationStatus
	ConnectionMethod *ConnectionMethod
	OwnerNotifiedAt  time.Time
	LastFollowupAt   time.Time
	FollowupCount    int
	AcceptedAt       *time.Time
	ChatHistory      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
