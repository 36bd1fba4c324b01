package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/observability"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/persistence"
	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

// smsDeadLetterKey is the redis list holding SMS messages that could not be
// delivered. Operators drain it out of band.
const smsDeadLetterKey = "notifications:sms:dead"

// Dispatcher sends a message through a single channel. It performs no retries;
// the domain retries by re-engaging on the scheduler cadence.
//
// SendSMS never returns an error: gateway failures fall back to a dead-letter
// record so business logic is never blocked on messaging infra.
type Dispatcher interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, body string) error
}

// ChannelDispatcher delivers email over SMTP and SMS over an HTTP gateway.
type ChannelDispatcher struct {
	mail     mailSender
	sms      smsGateway
	fallback *persistence.Redis
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewDispatcher builds a dispatcher from messaging configuration. Channels
// without configuration run in log-only mode.
func NewDispatcher(cfg config.NotificationConfig, fallback *persistence.Redis, logger *zap.Logger, metrics *observability.Metrics) *ChannelDispatcher {
	return &ChannelDispatcher{
		mail:     newSMTPSender(cfg),
		sms:      newSMSGateway(cfg),
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// SendEmail delivers a single email. A missing subject is a validation error.
func (d *ChannelDispatcher) SendEmail(ctx context.Context, to, subject, body string) error {
	if subject == "" {
		return apperrors.NewValidationError("email requires a subject", nil)
	}
	if d.mail == nil {
		d.logger.Debug("smtp not configured; dropping email",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}
	if err := d.mail.Send(to, subject, body); err != nil {
		d.metrics.RecordNotification("email", false)
		return apperrors.NewUpstreamNotificationError("email", err)
	}
	d.metrics.RecordNotification("email", true)
	return nil
}

// SendSMS delivers a text message, falling back to the dead-letter list when
// the gateway is unavailable or rejects the message.
func (d *ChannelDispatcher) SendSMS(ctx context.Context, to, body string) error {
	if d.sms == nil {
		d.deadLetter(ctx, to, body, "sms gateway not configured")
		return nil
	}
	if err := d.sms.Push(ctx, to, body); err != nil {
		d.deadLetter(ctx, to, body, err.Error())
		return nil
	}
	d.metrics.RecordNotification("sms", true)
	return nil
}

type deadLetterRecord struct {
	Target   string    `json:"target"`
	Body     string    `json:"body"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failedAt"`
}

func (d *ChannelDispatcher) deadLetter(ctx context.Context, to, body, reason string) {
	d.metrics.RecordNotification("sms", false)
	d.logger.Warn("sms delivery failed; recording dead letter",
		zap.String("to", to),
		zap.String("reason", reason))

	payload, err := json.Marshal(deadLetterRecord{
		Target:   to,
		Body:     body,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := d.fallback.PushToList(ctx, smsDeadLetterKey, string(payload)); err != nil {
		d.logger.Error("unable to record sms dead letter", zap.Error(err))
	}
}
