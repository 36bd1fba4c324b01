package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

var testNotification = config.NotificationConfig{
	OperatorEmail: "ops@example.com",
	OperatorPhone: "+15550100",
}

func newEscalationFixture(t *testing.T) (*EscalationService, *fakeEscalationRepo, *fakeDispatcher, *time.Time) {
	t.Helper()
	repo := newFakeEscalationRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewEscalationService(EscalationDependencies{
		EscalationRepo: repo,
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
		Notification:   testNotification,
	})
	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }
	return svc, repo, dispatcher, &current
}

func TestCreateEscalation(t *testing.T) {
	svc, repo, dispatcher, current := newEscalationFixture(t)

	esc, err := svc.Create(context.Background(), EscalationCreateInput{
		UserID:      "user-1",
		UserName:    "Dana",
		UserEmail:   "dana@example.com",
		Summary:     "billing issue",
		ChatHistory: "assistant: sorry, I can't help with that",
	})
	require.NoError(t, err)
	require.NotEmpty(t, esc.ID)

	stored, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscalationStatusPending, stored.Status)
	assert.Equal(t, 0, stored.FollowupCount)
	assert.Equal(t, domain.UrgencyNormal, stored.Urgency)
	assert.Equal(t, *current, stored.OwnerNotifiedAt)
	assert.Equal(t, *current, stored.LastFollowupAt)
	assert.Nil(t, stored.ConnectionMethod)

	emails := dispatcher.byChannel("email")
	require.Len(t, emails, 1)
	assert.Equal(t, "ops@example.com", emails[0].to)
	assert.Contains(t, emails[0].subject, "Dana")
	assert.Contains(t, emails[0].body, "billing issue")

	smses := dispatcher.byChannel("sms")
	require.Len(t, smses, 1)
	assert.Equal(t, "+15550100", smses[0].to)
}

func TestCreateEscalationValidation(t *testing.T) {
	svc, _, _, _ := newEscalationFixture(t)

	_, err := svc.Create(context.Background(), EscalationCreateInput{UserID: "user-1"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.Create(context.Background(), EscalationCreateInput{Summary: "help"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCreateEscalationSurvivesNotificationFailure(t *testing.T) {
	svc, repo, dispatcher, _ := newEscalationFixture(t)
	dispatcher.emailErr = errors.New("smtp down")

	esc, err := svc.Create(context.Background(), EscalationCreateInput{
		UserID:  "user-1",
		Summary: "cannot log in",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscalationStatusPending, stored.Status)
}

func TestAcceptIdempotentByValue(t *testing.T) {
	svc, repo, _, current := newEscalationFixture(t)

	esc, err := svc.Create(context.Background(), EscalationCreateInput{UserID: "user-1", Summary: "stuck"})
	require.NoError(t, err)

	msg, err := svc.Accept(context.Background(), esc.ID, domain.ConnectionMethodPhone)
	require.NoError(t, err)
	assert.Contains(t, msg, "call you")

	first, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	require.NotNil(t, first.AcceptedAt)
	acceptedAt := *first.AcceptedAt

	// Repeating with the same method returns the same message without
	// touching the record, even later in time.
	*current = current.Add(10 * time.Minute)
	again, err := svc.Accept(context.Background(), esc.ID, domain.ConnectionMethodPhone)
	require.NoError(t, err)
	assert.Equal(t, msg, again)

	second, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	assert.Equal(t, acceptedAt, *second.AcceptedAt)
}

func TestAcceptDifferentMethodConflicts(t *testing.T) {
	svc, _, _, _ := newEscalationFixture(t)

	esc, err := svc.Create(context.Background(), EscalationCreateInput{UserID: "user-1", Summary: "stuck"})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), esc.ID, domain.ConnectionMethodZoom)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), esc.ID, domain.ConnectionMethodChat)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestAcceptUnknownEscalation(t *testing.T) {
	svc, _, _, _ := newEscalationFixture(t)

	_, err := svc.Accept(context.Background(), "esc-missing", domain.ConnectionMethodChat)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAcceptUnknownMethod(t *testing.T) {
	svc, _, _, _ := newEscalationFixture(t)

	_, err := svc.Accept(context.Background(), "esc-1", domain.ConnectionMethod("FAX"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _, current := newEscalationFixture(t)

	first, err := svc.Create(context.Background(), EscalationCreateInput{UserID: "u1", Summary: "one"})
	require.NoError(t, err)
	*current = current.Add(time.Minute)
	second, err := svc.Create(context.Background(), EscalationCreateInput{UserID: "u2", Summary: "two"})
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
