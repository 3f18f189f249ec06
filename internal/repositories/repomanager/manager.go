package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clientdir/internal/dbx"
	"github.com/dmitrijs2005/clientdir/internal/repositories/clients"
	"github.com/dmitrijs2005/clientdir/internal/repositories/phones"
)

// RepositoryManager vends repositories bound to an arbitrary DBTX and owns
// the schema lifecycle of the clients/phones tables.
type RepositoryManager interface {
	// RunMigrations creates the schema; safe to call repeatedly.
	RunMigrations(ctx context.Context, db *sql.DB) error
	// ResetSchema drops the schema, children before parent. Destructive;
	// intended for test/setup use.
	ResetSchema(ctx context.Context, db *sql.DB) error
	Clients(db dbx.DBTX) clients.Repository
	Phones(db dbx.DBTX) phones.Repository
}
