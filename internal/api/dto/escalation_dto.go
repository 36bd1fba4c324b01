package dto

import (
	"time"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
)

// CreateEscalationRequest payload. Field casing follows the platform's wire
// contract rather than this service's internal conventions.
type CreateEscalationRequest struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	Summary     string `json:"summary"`
	ChatHistory string `json:"chatHistory"`
	Urgency     string `json:"urgency"`
}

// CreateEscalationResponse payload.
type CreateEscalationResponse struct {
	Success      bool   `json:"success"`
	EscalationID string `json:"escalationId"`
}

// AcceptEscalationRequest payload.
type AcceptEscalationRequest struct {
	EscalationID     string `json:"escalationId"`
	ConnectionMethod string `json:"connectionMethod"`
}

// AcceptEscalationResponse payload.
type AcceptEscalationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EscalationSummary response item.
type EscalationSummary struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"userId"`
	UserName         string                  `json:"userName"`
	UserEmail        string                  `json:"userEmail"`
	Summary          string                  `json:"summary"`
	Urgency          domain.UrgencyLevel     `json:"urgency"`
	Status           domain.EscalationStatus `json:"status"`
	ConnectionMethod *string                 `json:"connectionMethod,omitempty"`
	OwnerNotifiedAt  time.Time               `json:"ownerNotifiedAt"`
	LastFollowupAt   time.Time               `json:"lastFollowupAt"`
	FollowupCount    int                     `json:"followupCount"`
	AcceptedAt       *time.Time              `json:"acceptedAt,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// RunFollowupResponse payload for the scheduler trigger.
type RunFollowupResponse struct {
	Success bool `json:"success"`
	Checked int  `json:"checked"`
}
