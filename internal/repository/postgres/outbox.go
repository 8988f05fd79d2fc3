package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
)

const outboxColumns = `id, event_type, payload, status, error_message, retry_count, retry_at,
	claimed_at, created_at, processed_at`

const defaultClaimLease = 5 * time.Minute

type outboxRepository struct {
	BaseRepository
	maxRetries int
	claimLease time.Duration
}

// NewOutboxRepository returns the outbox store. Events that fail more than
// maxRetries times are parked as failed instead of being retried. Events
// left in processing longer than claimLease are claimable again; zero means
// five minutes.
func NewOutboxRepository(db *sqlx.DB, maxRetries int, claimLease time.Duration) repository.OutboxRepository {
	if claimLease <= 0 {
		claimLease = defaultClaimLease
	}
	return &outboxRepository{
		BaseRepository: NewBaseRepository(db),
		maxRetries:     maxRetries,
		claimLease:     claimLease,
	}
}

// insertOutboxEvent writes event with whatever executor the caller holds, so
// domain writes can queue events in their own transaction.
func insertOutboxEvent(ctx context.Context, ex sqlx.ExtContext, event *model.OutboxEvent) error {
	if event == nil || len(event.Payload) == 0 {
		return fmt.Errorf("outbox event and payload are required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}

	query := `
		INSERT INTO outbox_events (id, event_type, payload, status)
		VALUES ($1, $2, $3, $4)
	`
	// lib/pq sends []byte as bytea; jsonb needs text.
	if _, err := ex.ExecContext(ctx, query, event.ID, event.EventType, string(event.Payload), event.Status); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return insertOutboxEvent(ctx, r.db, event)
}

func (r *outboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = 'processing', claimed_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE (
				status IN ('pending', 'retry')
				AND (retry_at IS NULL OR retry_at <= NOW())
			) OR (
				status = 'processing'
				AND claimed_at < NOW() - make_interval(secs => $2)
			)
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns

	events := []*model.OutboxEvent{}
	if err := r.db.SelectContext(ctx, &events, query, limit, r.claimLease.Seconds()); err != nil {
		return nil, fmt.Errorf("failed to claim pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_events
		SET status = 'processed', processed_at = NOW(), error_message = NULL
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	query := `
		UPDATE outbox_events
		SET retry_count = retry_count + 1,
			error_message = $2,
			retry_at = $3,
			status = CASE WHEN retry_count + 1 >= $4 THEN 'failed' ELSE 'retry' END
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, errMsg, retryAt, r.maxRetries); err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'processed'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
