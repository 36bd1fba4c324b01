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
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/observability"
)

func newFollowupFixture(t *testing.T) (*FollowupService, *fakeEscalationRepo, *fakeDispatcher, *time.Time) {
	t.Helper()
	repo := newFakeEscalationRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewFollowupService(FollowupDependencies{
		EscalationRepo: repo,
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
		Metrics:        observability.NewMetrics(),
		Scheduler:      config.SchedulerConfig{FollowupThresholdMinutes: 15},
		Notification:   testNotification,
	})
	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }
	return svc, repo, dispatcher, &current
}

func seedPending(t *testing.T, repo *fakeEscalationRepo, at time.Time, email string) *domain.Escalation {
	t.Helper()
	esc := &domain.Escalation{
		UserID:          "user-1",
		UserName:        "Dana",
		UserEmail:       email,
		Summary:         "billing issue",
		Urgency:         domain.UrgencyNormal,
		Status:          domain.EscalationStatusPending,
		OwnerNotifiedAt: at,
		LastFollowupAt:  at,
	}
	require.NoError(t, repo.Create(context.Background(), esc))
	return esc
}

func TestRunPassAdvancesDueEscalation(t *testing.T) {
	svc, repo, dispatcher, current := newFollowupFixture(t)
	esc := seedPending(t, repo, *current, "dana@example.com")

	*current = current.Add(16 * time.Minute)
	processed, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FollowupCount)
	assert.Equal(t, *current, stored.LastFollowupAt)

	emails := dispatcher.byChannel("email")
	require.Len(t, emails, 1)
	assert.Equal(t, "dana@example.com", emails[0].to)
	assert.Contains(t, emails[0].body, "Hang tight")
	assert.Empty(t, dispatcher.byChannel("sms"))
}

func TestRunPassSkipsRecordsInsideThreshold(t *testing.T) {
	svc, repo, _, current := newFollowupFixture(t)
	seedPending(t, repo, *current, "dana@example.com")

	*current = current.Add(10 * time.Minute)
	processed, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestRunPassExactlyOncePerWindow(t *testing.T) {
	svc, repo, _, current := newFollowupFixture(t)
	esc := seedPending(t, repo, *current, "dana@example.com")

	*current = current.Add(16 * time.Minute)
	processed, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	// An overlapping invocation in the same window finds nothing to claim.
	processed, err = svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	stored, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FollowupCount)
}

func TestGraduatedMessagesAndReAlertThreshold(t *testing.T) {
	svc, repo, dispatcher, current := newFollowupFixture(t)
	esc := seedPending(t, repo, *current, "dana@example.com")

	// Pass 1 and 2: user messages only, no operator re-alert yet.
	for pass := 1; pass <= 2; pass++ {
		*current = current.Add(16 * time.Minute)
		processed, err := svc.RunPass(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, processed)
		assert.Empty(t, dispatcher.byChannel("sms"), "no re-alert before the third pass")
	}

	// Third pass: 45+ minutes unacknowledged, operator re-alert fires.
	*current = current.Add(16 * time.Minute)
	processed, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, processed)

	smses := dispatcher.byChannel("sms")
	require.Len(t, smses, 1)
	assert.Equal(t, "+15550100", smses[0].to)
	assert.Contains(t, smses[0].body, "45+ min")

	emails := dispatcher.byChannel("email")
	require.Len(t, emails, 3)
	assert.Contains(t, emails[0].body, "Hang tight")
	assert.Contains(t, emails[1].body, "still working")
	assert.Contains(t, emails[2].body, "still in the queue")

	stored, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.FollowupCount)
}

func TestFourthPassKeepsAlertingWithPatienceMessage(t *testing.T) {
	svc, repo, dispatcher, current := newFollowupFixture(t)
	seedPending(t, repo, *current, "dana@example.com")

	for pass := 1; pass <= 4; pass++ {
		*current = current.Add(16 * time.Minute)
		_, err := svc.RunPass(context.Background())
		require.NoError(t, err)
	}

	emails := dispatcher.byChannel("email")
	require.Len(t, emails, 4)
	assert.Contains(t, emails[3].body, "patience")
	assert.Len(t, dispatcher.byChannel("sms"), 2)
}

func TestAcceptedEscalationsAreTerminal(t *testing.T) {
	svc, repo, _, current := newFollowupFixture(t)
	esc := seedPending(t, repo, *current, "dana@example.com")

	_, err := repo.Accept(context.Background(), esc.ID, domain.ConnectionMethodPhone, *current)
	require.NoError(t, err)

	*current = current.Add(time.Hour)
	processed, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	stored, err := repo.GetByID(context.Background(), esc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FollowupCount)
}

func TestNotificationFailureDoesNotAbortPass(t *testing.T) {
	svc, repo, dispatcher, current := newFollowupFixture(t)
	first := seedPending(t, repo, *current, "one@example.com")
	second := seedPending(t, repo, *current, "two@example.com")
	dispatcher.emailErr = errors.New("smtp down")

	*current = current.Add(16 * time.Minute)
	processed, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	for _, id := range []string{first.ID, second.ID} {
		stored, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.FollowupCount)
	}
}
