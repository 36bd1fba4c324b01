package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/observability"
	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

type fakeMail struct {
	sent int
	err  error
}

func (f *fakeMail) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent++
	return nil
}

type fakeGateway struct {
	sent int
	err  error
}

func (f *fakeGateway) Push(ctx context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent++
	return nil
}

func newTestDispatcher(mail mailSender, sms smsGateway) *ChannelDispatcher {
	return &ChannelDispatcher{
		mail:    mail,
		sms:     sms,
		logger:  zap.NewNop(),
		metrics: observability.NewMetrics(),
	}
}

func TestSendEmailRequiresSubject(t *testing.T) {
	mail := &fakeMail{}
	d := newTestDispatcher(mail, nil)

	err := d.SendEmail(context.Background(), "to@example.com", "", "body")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	assert.Zero(t, mail.sent)
}

func TestSendEmailPropagatesChannelFailure(t *testing.T) {
	mail := &fakeMail{err: errors.New("connection refused")}
	d := newTestDispatcher(mail, nil)

	err := d.SendEmail(context.Background(), "to@example.com", "subject", "body")
	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_NOTIFICATION", apperrors.ToDomainError(err).Code)
}

func TestSendEmailUnconfiguredIsNoop(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	err := d.SendEmail(context.Background(), "to@example.com", "subject", "body")
	assert.NoError(t, err)
}

func TestSendSMSDelivers(t *testing.T) {
	gateway := &fakeGateway{}
	d := newTestDispatcher(nil, gateway)

	err := d.SendSMS(context.Background(), "+15550100", "on the way")
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.sent)
}

func TestSendSMSNeverFails(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("gateway 502")}
	d := newTestDispatcher(nil, gateway)

	// Gateway failure falls back to the dead-letter record; the caller still
	// sees success.
	err := d.SendSMS(context.Background(), "+15550100", "on the way")
	assert.NoError(t, err)

	// Same when no gateway is configured at all.
	d = newTestDispatcher(nil, nil)
	err = d.SendSMS(context.Background(), "+15550100", "on the way")
	assert.NoError(t, err)
}
