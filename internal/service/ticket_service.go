package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/notify"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/repository"
	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

const defaultEstimatedEta = "within 24 hours"

// TicketService coordinates asynchronous ticket creation and listing.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher notify.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	Dispatcher   notify.Dispatcher
	Logger       *zap.Logger
	Notification config.NotificationConfig
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	UserID       string
	UserName     string
	UserEmail    string
	Subject      string
	Description  string
	Category     string
	Priority     domain.TicketPriority
	EstimatedEta string
	ChatHistory  string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cfg:        deps.Notification,
	}
}

// Create persists a ticket and emails the operator its metadata. The email is
// best-effort; creation succeeds even when it fails.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.UserID) == "" ||
		strings.TrimSpace(input.Subject) == "" ||
		strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("userId, subject and description required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityNormal
	}
	eta := strings.TrimSpace(input.EstimatedEta)
	if eta == "" {
		eta = defaultEstimatedEta
	}

	ticket := &domain.Ticket{
		UserID:       strings.TrimSpace(input.UserID),
		UserName:     strings.TrimSpace(input.UserName),
		UserEmail:    strings.TrimSpace(input.UserEmail),
		Subject:      strings.TrimSpace(input.Subject),
		Description:  strings.TrimSpace(input.Description),
		Category:     strings.TrimSpace(input.Category),
		Priority:     priority,
		Status:       domain.TicketStatusOpen,
		EstimatedEta: eta,
		ChatHistory:  input.ChatHistory,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.notifyOperator(ctx, ticket)
	return ticket, nil
}

// List returns tickets newest-first, optionally filtered by status.
func (s *TicketService) List(ctx context.Context, status *domain.TicketStatus) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, status)
}

func (s *TicketService) notifyOperator(ctx context.Context, ticket *domain.Ticket) {
	if s.cfg.OperatorEmail == "" {
		return
	}
	subject := fmt.Sprintf("New ticket %s: %s", ticket.TicketNumber, ticket.Subject)
	body := fmt.Sprintf(
		"Ticket %s (%s priority) opened by %s (%s).\n\nCategory: %s\n\n%s\n",
		ticket.TicketNumber, ticket.Priority, ticket.UserName, ticket.UserEmail,
		ticket.Category, ticket.Description)
	if err := s.dispatcher.SendEmail(ctx, s.cfg.OperatorEmail, subject, body); err != nil {
		s.logger.Warn("ticket notification failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("ticket_number", ticket.TicketNumber),
			zap.Error(err))
	}
}
