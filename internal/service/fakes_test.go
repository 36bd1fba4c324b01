package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
)

// fakeEscalationRepo mirrors the conditional-update semantics of the real
// repository over an in-memory map.
type fakeEscalationRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Escalation
	seq     int
}

func newFakeEscalationRepo() *fakeEscalationRepo {
	return &fakeEscalationRepo{records: make(map[string]*domain.Escalation)}
}

func (f *fakeEscalationRepo) Create(ctx context.Context, esc *domain.Escalation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	esc.ID = fmt.Sprintf("esc-%d", f.seq)
	esc.CreatedAt = esc.OwnerNotifiedAt
	esc.UpdatedAt = esc.OwnerNotifiedAt
	stored := *esc
	f.records[esc.ID] = &stored
	return nil
}

func (f *fakeEscalationRepo) GetByID(ctx context.Context, id string) (*domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeEscalationRepo) List(ctx context.Context) ([]domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Escalation, 0, len(f.records))
	for i := f.seq; i >= 1; i-- {
		if rec, ok := f.records[fmt.Sprintf("esc-%d", i)]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeEscalationRepo) ListDue(ctx context.Context, cutoff time.Time) ([]domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Escalation
	for _, rec := range f.records {
		if rec.Status == domain.EscalationStatusPending && rec.LastFollowupAt.Before(cutoff) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeEscalationRepo) ClaimFollowup(ctx context.Context, id string, cutoff, now time.Time) (*domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.Status != domain.EscalationStatusPending || !rec.LastFollowupAt.Before(cutoff) {
		return nil, nil
	}
	rec.LastFollowupAt = now
	rec.FollowupCount++
	rec.UpdatedAt = now
	cp := *rec
	return &cp, nil
}

func (f *fakeEscalationRepo) Accept(ctx context.Context, id string, method domain.ConnectionMethod, now time.Time) (*domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.Status != domain.EscalationStatusPending {
		return nil, nil
	}
	rec.Status = domain.EscalationStatusAccepted
	rec.ConnectionMethod = &method
	rec.AcceptedAt = &now
	rec.UpdatedAt = now
	cp := *rec
	return &cp, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []*domain.Ticket
	seq     int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("tkt-%d", f.seq)
	if ticket.TicketNumber == "" {
		ticket.TicketNumber = fmt.Sprintf("TKT-%08d", f.seq)
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	f.tickets = append(f.tickets, &stored)
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickets {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) List(ctx context.Context, status *domain.TicketStatus) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for i := len(f.tickets) - 1; i >= 0; i-- {
		if status != nil && f.tickets[i].Status != *status {
			continue
		}
		out = append(out, *f.tickets[i])
	}
	return out, nil
}

type sentMessage struct {
	channel string
	to      string
	subject string
	body    string
}

// fakeDispatcher records every dispatch and can simulate email failures. SMS
// never fails, matching the dispatcher contract.
type fakeDispatcher struct {
	mu       sync.Mutex
	sent     []sentMessage
	emailErr error
}

func (f *fakeDispatcher) SendEmail(ctx context.Context, to, subject, body string) error {
	if f.emailErr != nil {
		return f.emailErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channel: "email", to: to, subject: subject, body: body})
	return nil
}

func (f *fakeDispatcher) SendSMS(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channel: "sms", to: to, body: body})
	return nil
}

func (f *fakeDispatcher) byChannel(channel string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, msg := range f.sent {
		if msg.channel == channel {
			out = append(out, msg)
		}
	}
	return out
}
