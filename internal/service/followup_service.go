package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/notify"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/observability"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/repository"
)

// followupMessages grades the user-facing message by how many passes have
// already acted on the record.
var followupMessages = []string{
	"Our support team has been notified and will be with you shortly. Hang tight!",
	"We're still working on connecting you with a specialist. Thanks for bearing with us.",
	"Your request is still in the queue. We haven't forgotten about you.",
	"Thank you for your patience. We're doing everything we can to get you help as soon as possible.",
}

// reAlertAfterFollowups is the pre-increment follow-up count at which the
// operator gets re-alerted over SMS (third pass, 30+ minutes unacknowledged).
const reAlertAfterFollowups = 2

// FollowupService is the scan-and-advance pass over due pending escalations.
// It holds no state between invocations and is safe to run concurrently: each
// record is claimed with a conditional update before any message is sent, so
// overlapping passes process a record at most once per threshold window.
type FollowupService struct {
	escalations repository.EscalationRepository
	dispatcher  notify.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	scheduler   config.SchedulerConfig
	operator    config.NotificationConfig
	now         func() time.Time
}

// FollowupDependencies bundles collaborators for the follow-up service.
type FollowupDependencies struct {
	EscalationRepo repository.EscalationRepository
	Dispatcher     notify.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Scheduler      config.SchedulerConfig
	Notification   config.NotificationConfig
}

// NewFollowupService constructs the service.
func NewFollowupService(deps FollowupDependencies) *FollowupService {
	return &FollowupService{
		escalations: deps.EscalationRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		scheduler:   deps.Scheduler,
		operator:    deps.Notification,
		now:         time.Now,
	}
}

// RunPass processes every escalation due for re-engagement and returns how
// many records were advanced. Per-record notification failures are logged and
// never abort the pass.
func (s *FollowupService) RunPass(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.scheduler.FollowupThreshold())

	due, err := s.escalations.ListDue(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range due {
		claimed, err := s.escalations.ClaimFollowup(ctx, due[i].ID, cutoff, s.now())
		if err != nil {
			s.logger.Error("follow-up claim failed",
				zap.String("escalation_id", due[i].ID), zap.Error(err))
			continue
		}
		if claimed == nil {
			// Another pass (or an acceptance) got there first.
			continue
		}

		s.engageUser(ctx, claimed)
		if claimed.FollowupCount-1 >= reAlertAfterFollowups {
			s.reAlertOperator(ctx, claimed)
		}
		processed++
	}

	s.metrics.RecordFollowupPass(processed)
	if processed > 0 {
		s.logger.Info("follow-up pass complete", zap.Int("processed", processed))
	}
	return processed, nil
}

// engageUser sends the graduated follow-up message keyed by how many passes
// had acted on the record before this one.
func (s *FollowupService) engageUser(ctx context.Context, esc *domain.Escalation) {
	message := followupMessage(esc.FollowupCount - 1)
	if esc.UserEmail == "" {
		s.logger.Warn("escalation has no user email; skipping follow-up message",
			zap.String("escalation_id", esc.ID))
		return
	}
	if err := s.dispatcher.SendEmail(ctx, esc.UserEmail, "An update on your support request", message); err != nil {
		s.logger.Warn("follow-up message failed",
			zap.String("escalation_id", esc.ID), zap.Error(err))
	}
}

func (s *FollowupService) reAlertOperator(ctx context.Context, esc *domain.Escalation) {
	if s.operator.OperatorPhone == "" {
		return
	}
	elapsed := esc.FollowupCount * int(s.scheduler.FollowupThreshold().Minutes())
	text := fmt.Sprintf("Escalation from %s still unacknowledged after %d+ min: %s",
		displayName(esc), elapsed, truncate(esc.Summary, 80))
	if err := s.dispatcher.SendSMS(ctx, s.operator.OperatorPhone, text); err != nil {
		s.logger.Warn("operator re-alert failed",
			zap.String("escalation_id", esc.ID), zap.Error(err))
	}
}

func followupMessage(priorFollowups int) string {
	if priorFollowups < 0 {
		priorFollowups = 0
	}
	if priorFollowups >= len(followupMessages) {
		priorFollowups = len(followupMessages) - 1
	}
	return followupMessages[priorFollowups]
}
