package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/notify"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/repository"
	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

// connectionMessages maps the operator's chosen engagement channel to the
// message shown to the user on acceptance.
var connectionMessages = map[domain.ConnectionMethod]string{
	domain.ConnectionMethodChat:  "A support specialist has picked up your request and will continue right here in this chat.",
	domain.ConnectionMethodZoom:  "A support specialist has picked up your request. A Zoom invitation is on its way to your email.",
	domain.ConnectionMethodPhone: "A support specialist has picked up your request and will call you shortly at the number on file.",
	domain.ConnectionMethodEmail: "A support specialist has picked up your request and will reply to you by email shortly.",
}

// EscalationService coordinates the escalation lifecycle: creation with
// operator alerting, and operator acceptance.
type EscalationService struct {
	escalations repository.EscalationRepository
	dispatcher  notify.Dispatcher
	logger      *zap.Logger
	cfg         config.NotificationConfig
	now         func() time.Time
}

// EscalationDependencies bundles collaborators for the escalation service.
type EscalationDependencies struct {
	EscalationRepo repository.EscalationRepository
	Dispatcher     notify.Dispatcher
	Logger         *zap.Logger
	Notification   config.NotificationConfig
}

// EscalationCreateInput describes escalation creation payload.
type EscalationCreateInput struct {
	UserID      string
	UserName    string
	UserEmail   string
	Summary     string
	ChatHistory string
	Urgency     domain.UrgencyLevel
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		escalations: deps.EscalationRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		cfg:         deps.Notification,
		now:         time.Now,
	}
}

// Create persists a pending escalation and alerts the operator over email and
// SMS. Alerting is best-effort: the escalation exists even when both channels
// fail, and the scheduler re-engages from there.
func (s *EscalationService) Create(ctx context.Context, input EscalationCreateInput) (*domain.Escalation, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.Summary) == "" {
		return nil, apperrors.NewValidationError("userId and summary required", nil)
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}

	now := s.now()
	esc := &domain.Escalation{
		UserID:          strings.TrimSpace(input.UserID),
		UserName:        strings.TrimSpace(input.UserName),
		UserEmail:       strings.TrimSpace(input.UserEmail),
		Summary:         strings.TrimSpace(input.Summary),
		Urgency:         urgency,
		Status:          domain.EscalationStatusPending,
		OwnerNotifiedAt: now,
		LastFollowupAt:  now,
		FollowupCount:   0,
		ChatHistory:     input.ChatHistory,
	}

	if err := s.escalations.Create(ctx, esc); err != nil {
		return nil, err
	}

	s.alertOperator(ctx, esc)
	return esc, nil
}

// Accept marks an escalation accepted with the given connection method and
// returns the channel-specific message for the user. First acceptance wins:
// repeating with the same method is a no-op returning the same message, a
// different method is rejected.
func (s *EscalationService) Accept(ctx context.Context, id string, method domain.ConnectionMethod) (string, error) {
	message, ok := connectionMessages[method]
	if !ok {
		return "", apperrors.NewValidationError("unknown connection method", map[string]any{"connectionMethod": method})
	}

	esc, err := s.escalations.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperrors.NewNotFound("escalation", map[string]any{"escalationId": id})
		}
		return "", err
	}
	if esc.Status == domain.EscalationStatusAccepted {
		return s.repeatAccept(esc, method)
	}

	accepted, err := s.escalations.Accept(ctx, id, method, s.now())
	if err != nil {
		return "", err
	}
	if accepted == nil {
		// Lost the race to a concurrent accept; re-read and apply the same rules.
		esc, err = s.escalations.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return s.repeatAccept(esc, method)
	}

	s.logger.Info("escalation accepted",
		zap.String("escalation_id", accepted.ID),
		zap.String("connection_method", string(method)))
	return message, nil
}

// List returns all escalations, newest first.
func (s *EscalationService) List(ctx context.Context) ([]domain.Escalation, error) {
	return s.escalations.List(ctx)
}

func (s *EscalationService) repeatAccept(esc *domain.Escalation, method domain.ConnectionMethod) (string, error) {
	if esc.ConnectionMethod != nil && *esc.ConnectionMethod == method {
		return connectionMessages[method], nil
	}
	return "", apperrors.NewConflict("escalation already accepted with a different connection method",
		map[string]any{"escalationId": esc.ID})
}

func (s *EscalationService) alertOperator(ctx context.Context, esc *domain.Escalation) {
	if s.cfg.OperatorEmail != "" {
		subject := fmt.Sprintf("[%s] Escalation from %s", esc.Urgency, displayName(esc))
		body := fmt.Sprintf(
			"User %s (%s) needs human help.\n\nIssue: %s\n\nTranscript:\n%s\n",
			displayName(esc), esc.UserEmail, esc.Summary, esc.ChatHistory)
		if err := s.dispatcher.SendEmail(ctx, s.cfg.OperatorEmail, subject, body); err != nil {
			s.logger.Warn("operator email alert failed",
				zap.String("escalation_id", esc.ID), zap.Error(err))
		}
	}
	if s.cfg.OperatorPhone != "" {
		text := fmt.Sprintf("Escalation: %s needs help - %s", displayName(esc), truncate(esc.Summary, 100))
		if err := s.dispatcher.SendSMS(ctx, s.cfg.OperatorPhone, text); err != nil {
			s.logger.Warn("operator sms alert failed",
				zap.String("escalation_id", esc.ID), zap.Error(err))
		}
	}
}

func displayName(esc *domain.Escalation) string {
	if esc.UserName != "" {
		return esc.UserName
	}
	return esc.UserID
}

func truncate(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
