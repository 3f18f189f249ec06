// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clientdir/internal/dbx"
	"github.com/dmitrijs2005/clientdir/internal/migrations"
	"github.com/dmitrijs2005/clientdir/internal/repositories/clients"
	"github.com/dmitrijs2005/clientdir/internal/repositories/phones"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes the schema lifecycle hooks.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Clients returns a clients.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Clients(db dbx.DBTX) clients.Repository {
	return clients.NewPostgresRepository(db)
}

// Phones returns a phones.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Phones(db dbx.DBTX) phones.Repository {
	return phones.NewPostgresRepository(db)
}

// seams for testing the goose entry points
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

var gooseResetContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.ResetContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies them
// against the provided database connection. Applying an already-current
// schema is a no-op, so repeated calls are safe.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// ResetSchema rolls every migration back, dropping the phones table before
// the clients table it references.
func (m *PostgresRepositoryManager) ResetSchema(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseResetContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
