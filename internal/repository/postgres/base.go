package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/physiotrack/clinic-api/pkg/errors"
)

const pqForeignKeyViolation = "23503"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapError turns driver errors into application errors. sql.ErrNoRows
// becomes a NotFound for resource; a foreign key violation becomes a
// NotFound for whichever parent the constraint points at.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource, err)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return errors.NotFound(referencedResource(pqErr.Constraint), err)
	}
	return err
}

func referencedResource(constraint string) string {
	switch {
	case strings.Contains(constraint, "visit_id"):
		return "visit"
	case strings.Contains(constraint, "inventory_id"):
		return "inventory item"
	default:
		return "patient"
	}
}

// updateBuilder assembles the SET clause of a partial update.
type updateBuilder struct {
	sets []string
	args []interface{}
}

func (b *updateBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

// build returns "UPDATE table SET ... WHERE id = $n RETURNING returning".
func (b *updateBuilder) build(table string, id int64, returning string) (string, []interface{}) {
	args := append(b.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(b.sets, ", "), len(args), returning)
	return query, args
}
