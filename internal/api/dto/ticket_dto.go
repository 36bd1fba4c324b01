package dto

import (
	"time"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	UserEmail    string `json:"userEmail"`
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Priority     string `json:"priority"`
	EstimatedEta string `json:"estimatedEta"`
	ChatHistory  string `json:"chatHistory"`
}

// CreatedTicket is the creation response body.
type CreatedTicket struct {
	ID           string `json:"id"`
	TicketNumber string `json:"ticketNumber"`
	EstimatedEta string `json:"estimatedEta"`
}

// CreateTicketResponse payload.
type CreateTicketResponse struct {
	Success bool          `json:"success"`
	Ticket  CreatedTicket `json:"ticket"`
}

// TicketSummary response item.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticketNumber"`
	UserID       string                `json:"userId"`
	UserName     string                `json:"userName"`
	Subject      string                `json:"subject"`
	Category     string                `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	EstimatedEta string                `json:"estimatedEta"`
	CreatedAt    time.Time             `json:"createdAt"`
}
