// Package clients provides the PostgreSQL-backed repository for client rows:
// inserts, conflict-safe upserts by email, sparse updates, deletes, and the
// grouped search query that aggregates each client's phone list.
package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clientdir/internal/dbx"
	"github.com/dmitrijs2005/clientdir/internal/models"
	"github.com/lib/pq"
)

// PostgresRepository implements client storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a client row and returns the engine-assigned id. A nil
// email is stored as NULL; a duplicate email surfaces as ErrDuplicateKey.
func (r *PostgresRepository) Create(ctx context.Context, firstName, lastName string, email *string) (int64, error) {
	query := `
		INSERT INTO clients (first_name, last_name, email)
		VALUES ($1, $2, $3)
		RETURNING client_id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, firstName, lastName, email).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert client: %w", dbx.MapError(err))
	}
	return id, nil
}

// UpsertByEmail inserts a client keyed on email or, when a row with that
// email already exists, updates its name fields in place. The conflict is
// resolved by the engine in a single statement, so concurrent callers
// upserting the same email cannot produce duplicate rows.
func (r *PostgresRepository) UpsertByEmail(ctx context.Context, firstName, lastName, email string) (int64, error) {
	query := `
		INSERT INTO clients (first_name, last_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (email)
		DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
		RETURNING client_id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, firstName, lastName, email).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert client: %w", dbx.MapError(err))
	}
	return id, nil
}

// UpdateSparse applies only the name/email fields present in upd, leaving
// the rest unchanged. The SET clause is compiled from the present fields
// with numbered bind parameters; phone-list replacement is the phones
// repository's job, not handled here. Updating a missing client id affects
// zero rows and is not an error.
func (r *PostgresRepository) UpdateSparse(ctx context.Context, clientID int64, upd models.ClientUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	for _, f := range []struct {
		column string
		value  *string
	}{
		{"first_name", upd.FirstName},
		{"last_name", upd.LastName},
		{"email", upd.Email},
	} {
		if f.value == nil {
			continue
		}
		args = append(args, *f.value)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, clientID)
	query := fmt.Sprintf("UPDATE clients SET %s WHERE client_id = $%d", strings.Join(sets, ", "), len(args))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update client: %w", dbx.MapError(err))
	}
	return nil
}

// Delete removes a client row; the ON DELETE CASCADE constraint removes its
// phones with it. Deleting a missing id affects zero rows and is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, clientID int64) error {
	query := `DELETE FROM clients WHERE client_id = $1`
	if _, err := r.db.ExecContext(ctx, query, clientID); err != nil {
		return fmt.Errorf("delete client: %w", dbx.MapError(err))
	}
	return nil
}

// Search returns the clients matching the filter, each with its aggregated
// phone list, ordered by client id. An empty result is a normal outcome.
func (r *PostgresRepository) Search(ctx context.Context, filter models.SearchFilter) ([]models.ClientRecord, error) {
	where, args := compileFilter(filter)

	query := `
		SELECT c.client_id, c.first_name, c.last_name, c.email,
		       array_remove(array_agg(p.phone_number), NULL) AS phones
		FROM clients c
		LEFT JOIN phones p ON p.client_id = c.client_id
		` + where + `
		GROUP BY c.client_id
		ORDER BY c.client_id
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", dbx.MapError(err))
	}
	defer rows.Close()

	var result []models.ClientRecord
	for rows.Next() {
		var rec models.ClientRecord
		if err := rows.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Email, pq.Array(&rec.Phones)); err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		if rec.Phones == nil {
			rec.Phones = []string{}
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search clients: %w", dbx.MapError(err))
	}
	return result, nil
}

// compileFilter turns the optional predicates into a WHERE clause with
// numbered bind parameters. The phone filter is exclusive: when present it
// is the sole predicate, an existence match against the phone set. Name and
// email filters match as unanchored case-sensitive LIKE patterns; wildcard
// characters in the value keep their LIKE meaning.
func compileFilter(filter models.SearchFilter) (string, []any) {
	if filter.Phone != nil {
		cond := `WHERE EXISTS (
			SELECT 1 FROM phones f
			WHERE f.client_id = c.client_id AND f.phone_number LIKE $1
		)`
		return cond, []any{contains(*filter.Phone)}
	}

	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"c.first_name", filter.FirstName},
		{"c.last_name", filter.LastName},
		{"c.email", filter.Email},
	} {
		if f.value == nil {
			continue
		}
		args = append(args, contains(*f.value))
		conds = append(conds, fmt.Sprintf("%s LIKE $%d", f.column, len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func contains(v string) string { return "%" + v + "%" }
