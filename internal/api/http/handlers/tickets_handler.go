package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/api/dto"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/service"
	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

// TicketsHandler manages asynchronous support ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.UserID) == "" ||
		strings.TrimSpace(req.Subject) == "" ||
		strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("userId, subject and description required", nil)
	}
	priority, ok := domain.ParseTicketPriority(req.Priority)
	if !ok {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}

	ticket, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		UserID:       req.UserID,
		UserName:     req.UserName,
		UserEmail:    req.UserEmail,
		Subject:      req.Subject,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     priority,
		EstimatedEta: req.EstimatedEta,
		ChatHistory:  req.ChatHistory,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CreateTicketResponse{
		Success: true,
		Ticket: dto.CreatedTicket{
			ID:           ticket.ID,
			TicketNumber: ticket.TicketNumber,
			EstimatedEta: ticket.EstimatedEta,
		},
	})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	var status *domain.TicketStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := domain.ParseTicketStatus(raw)
		if !ok {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
		}
		status = &parsed
	}

	tickets, err := h.service.List(c.UserContext(), status)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": items})
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		UserID:       ticket.UserID,
		UserName:     ticket.UserName,
		Subject:      ticket.Subject,
		Category:     ticket.Category,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		EstimatedEta: ticket.EstimatedEta,
		CreatedAt:    ticket.CreatedAt,
	}
}
