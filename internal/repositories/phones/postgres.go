// Package phones provides the PostgreSQL-backed repository for phone rows.
package phones

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clientdir/internal/dbx"
)

// PostgresRepository implements phone storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts one phone row for an existing client. A client id that does
// not resolve surfaces as ErrForeignKeyViolation.
func (r *PostgresRepository) Add(ctx context.Context, clientID int64, number string) error {
	query := `
		INSERT INTO phones (client_id, phone_number)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, clientID, number); err != nil {
		return fmt.Errorf("insert phone: %w", dbx.MapError(err))
	}
	return nil
}

// Replace swaps the client's whole phone set: all existing rows are deleted
// and the new list inserted. The caller must run this inside a transaction
// by binding the repository to a dbx.DBTX backed by *sql.Tx, so the swap is
// atomic and never observable half-done.
func (r *PostgresRepository) Replace(ctx context.Context, clientID int64, numbers []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM phones WHERE client_id = $1`, clientID); err != nil {
		return fmt.Errorf("clear phones: %w", dbx.MapError(err))
	}
	for _, number := range numbers {
		if err := r.Add(ctx, clientID, number); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByNumber removes every row matching the exact (client, number) pair.
// Zero rows affected is a silent success.
func (r *PostgresRepository) DeleteByNumber(ctx context.Context, clientID int64, number string) error {
	query := `
		DELETE FROM phones
		WHERE client_id = $1 AND phone_number = $2
	`
	if _, err := r.db.ExecContext(ctx, query, clientID, number); err != nil {
		return fmt.Errorf("delete phone: %w", dbx.MapError(err))
	}
	return nil
}
