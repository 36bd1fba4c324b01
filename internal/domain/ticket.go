package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for asynchronous tickets. This
// service only ever creates OPEN tickets; the remaining states exist for the
// downstream resolution workflows that mutate them.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ParseTicketStatus normalizes a status filter value.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	status := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return status, true
	default:
		return "", false
	}
}

// TicketPriority enumerates urgency for tickets.
type TicketPriority string

const (
	TicketPriorityNormal TicketPriority = "NORMAL"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ParseTicketPriority normalizes a caller-supplied priority, defaulting empty
// input to NORMAL.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return TicketPriorityNormal, true
	case TicketPriorityNormal:
		return TicketPriorityNormal, true
	case TicketPriorityHigh:
		return TicketPriorityHigh, true
	case TicketPriorityUrgent:
		return TicketPriorityUrgent, true
	default:
		return "", false
	}
}

// Ticket is the aggregate for asynchronous support requests. Created once by
// this service, mutated only by out-of-scope resolution workflows.
type Ticket struct {
	ID           string
	TicketNumber string
	UserID       string
	UserName     string
	UserEmail    string
	Subject      string
	Description  string
	Category     string
	Priority     TicketPriority
	Status       TicketStatus
	EstimatedEta string
	ChatHistory  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
