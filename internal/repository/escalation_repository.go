package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/domain"
)

const escalationColumns = `id, user_id, user_name, user_email, summary, urgency, status,
        connection_method, owner_notified_at, last_followup_at, followup_count,
        accepted_at, chat_history, created_at, updated_at`

// EscalationRepository encapsulates escalation persistence. ClaimFollowup and
// Accept are conditional updates: the predicate carries both status and, for
// claims, the due timestamp, so overlapping scheduler passes and racing
// accepts resolve to exactly one winner.
type EscalationRepository interface {
	Create(ctx context.Context, esc *domain.Escalation) error
	GetByID(ctx context.Context, id string) (*domain.Escalation, error)
	List(ctx context.Context) ([]domain.Escalation, error)
	ListDue(ctx context.Context, cutoff time.Time) ([]domain.Escalation, error)
	// ClaimFollowup advances last_followup_at and followup_count iff the record
	// is still pending and still due. Returns (nil, nil) when the claim is lost.
	ClaimFollowup(ctx context.Context, id string, cutoff, now time.Time) (*domain.Escalation, error)
	// Accept marks the record accepted iff it is still pending. Returns
	// (nil, nil) when another acceptance won the race.
	Accept(ctx context.Context, id string, method domain.ConnectionMethod, now time.Time) (*domain.Escalation, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository instantiates repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

func (r *escalationRepository) Create(ctx context.Context, esc *domain.Escalation) error {
	const query = `
        INSERT INTO escalations (user_id, user_name, user_email, summary, urgency, status,
            owner_notified_at, last_followup_at, followup_count, chat_history)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		esc.UserID,
		esc.UserName,
		esc.UserEmail,
		esc.Summary,
		esc.Urgency,
		esc.Status,
		esc.OwnerNotifiedAt,
		esc.LastFollowupAt,
		esc.FollowupCount,
		esc.ChatHistory,
	).Scan(&esc.ID, &esc.CreatedAt, &esc.UpdatedAt)
}

func (r *escalationRepository) GetByID(ctx context.Context, id string) (*domain.Escalation, error) {
	const query = `SELECT ` + escalationColumns + ` FROM escalations WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *escalationRepository) List(ctx context.Context) ([]domain.Escalation, error) {
	const query = `SELECT ` + escalationColumns + ` FROM escalations ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEscalations(rows)
}

func (r *escalationRepository) ListDue(ctx context.Context, cutoff time.Time) ([]domain.Escalation, error) {
	const query = `SELECT ` + escalationColumns + `
        FROM escalations
        WHERE status=$1 AND last_followup_at < $2
        ORDER BY last_followup_at ASC`
	rows, err := r.pool.Query(ctx, query, domain.EscalationStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEscalations(rows)
}

func (r *escalationRepository) ClaimFollowup(ctx context.Context, id string, cutoff, now time.Time) (*domain.Escalation, error) {
	const query = `
        UPDATE escalations
        SET last_followup_at=$3, followup_count=followup_count+1, updated_at=NOW()
        WHERE id=$1 AND status=$2 AND last_followup_at < $4
        RETURNING ` + escalationColumns
	esc, err := r.scanRow(r.pool.QueryRow(ctx, query, id, domain.EscalationStatusPending, now, cutoff))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return esc, err
}

func (r *escalationRepository) Accept(ctx context.Context, id string, method domain.ConnectionMethod, now time.Time) (*domain.Escalation, error) {
	const query = `
        UPDATE escalations
        SET status=$3, connection_method=$4, accepted_at=$5, updated_at=NOW()
        WHERE id=$1 AND status=$2
        RETURNING ` + escalationColumns
	esc, err := r.scanRow(r.pool.QueryRow(ctx, query,
		id, domain.EscalationStatusPending, domain.EscalationStatusAccepted, method, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return esc, err
}

func (r *escalationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Escalation, error) {
	return r.scanRow(r.pool.QueryRow(ctx, query, arg))
}

func (r *escalationRepository) scanRow(row pgx.Row) (*domain.Escalation, error) {
	var esc domain.Escalation
	if err := row.Scan(
		&esc.ID,
		&esc.UserID,
		&esc.UserName,
		&esc.UserEmail,
		&esc.Summary,
		&esc.Urgency,
		&esc.Status,
		&esc.ConnectionMethod,
		&esc.OwnerNotifiedAt,
		&esc.LastFollowupAt,
		&esc.FollowupCount,
		&esc.AcceptedAt,
		&esc.ChatHistory,
		&esc.CreatedAt,
		&esc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &esc, nil
}

func scanEscalations(rows pgx.Rows) ([]domain.Escalation, error) {
	var result []domain.Escalation
	for rows.Next() {
		var esc domain.Escalation
		if err := rows.Scan(
			&esc.ID,
			&esc.UserID,
			&esc.UserName,
			&esc.UserEmail,
			&esc.Summary,
			&esc.Urgency,
			&esc.Status,
			&esc.ConnectionMethod,
			&esc.OwnerNotifiedAt,
			&esc.LastFollowupAt,
			&esc.FollowupCount,
			&esc.AcceptedAt,
			&esc.ChatHistory,
			&esc.CreatedAt,
			&esc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, esc)
	}
	return result, rows.Err()
}
