package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/api/dto"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/service"
	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

// EscalationsHandler manages the escalation lifecycle endpoints.
type EscalationsHandler struct {
	escalations *service.EscalationService
	followups   *service.FollowupService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(escalations *service.EscalationService, followups *service.FollowupService) *EscalationsHandler {
	return &EscalationsHandler{escalations: escalations, followups: followups}
}

// Create POST /api/escalations.
func (h *EscalationsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEscalationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Summary) == "" {
		return apperrors.NewValidationError("userId and summary required", nil)
	}
	urgency, ok := domain.ParseUrgency(req.Urgency)
	if !ok {
		return apperrors.NewValidationError("unknown urgency", map[string]any{"urgency": req.Urgency})
	}

	esc, err := h.escalations.Create(c.UserContext(), service.EscalationCreateInput{
		UserID:      req.UserID,
		UserName:    req.UserName,
		UserEmail:   req.UserEmail,
		Summary:     req.Summary,
		ChatHistory: req.ChatHistory,
		Urgency:     urgency,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CreateEscalationResponse{Success: true, EscalationID: esc.ID})
}

// Accept POST /api/escalations/accept.
func (h *EscalationsHandler) Accept(c *fiber.Ctx) error {
	var req dto.AcceptEscalationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.EscalationID) == "" || strings.TrimSpace(req.ConnectionMethod) == "" {
		return apperrors.NewValidationError("escalationId and connectionMethod required", nil)
	}
	method, ok := domain.ParseConnectionMethod(req.ConnectionMethod)
	if !ok {
		return apperrors.NewValidationError("unknown connection method",
			map[string]any{"connectionMethod": req.ConnectionMethod})
	}

	message, err := h.escalations.Accept(c.UserContext(), req.EscalationID, method)
	if err != nil {
		return err
	}
	return c.JSON(dto.AcceptEscalationResponse{Success: true, Message: message})
}

// List GET /api/escalations.
func (h *EscalationsHandler) List(c *fiber.Ctx) error {
	escalations, err := h.escalations.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.EscalationSummary, 0, len(escalations))
	for i := range escalations {
		items = append(items, escalationSummary(&escalations[i]))
	}
	return c.JSON(fiber.Map{"escalations": items})
}

// RunFollowup POST /api/escalations/followup. Guarded by the scheduler secret.
func (h *EscalationsHandler) RunFollowup(c *fiber.Ctx) error {
	checked, err := h.followups.RunPass(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.RunFollowupResponse{Success: true, Checked: checked})
}

func escalationSummary(esc *domain.Escalation) dto.EscalationSummary {
	var method *string
	if esc.ConnectionMethod != nil {
		m := string(*esc.ConnectionMethod)
		method = &m
	}
	return dto.EscalationSummary{
		ID:               esc.ID,
		UserID:           esc.UserID,
		UserName:         esc.UserName,
		UserEmail:        esc.UserEmail,
		Summary:          esc.Summary,
		Urgency:          esc.Urgency,
		Status:           esc.Status,
		ConnectionMethod: method,
		OwnerNotifiedAt:  esc.OwnerNotifiedAt,
		LastFollowupAt:   esc.LastFollowupAt,
		FollowupCount:    esc.FollowupCount,
		AcceptedAt:       esc.AcceptedAt,
		CreatedAt:        esc.CreatedAt,
	}
}
