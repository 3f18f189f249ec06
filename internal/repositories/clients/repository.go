package clients

import (
	"context"

	"github.com/dmitrijs2005/clientdir/internal/models"
)

type Repository interface {
	Create(ctx context.Context, firstName, lastName string, email *string) (int64, error)
	UpsertByEmail(ctx context.Context, firstName, lastName, email string) (int64, error)
	UpdateSparse(ctx context.Context, clientID int64, upd models.ClientUpdate) error
	Delete(ctx context.Context, clientID int64) error
	Search(ctx context.Context, filter models.SearchFilter) ([]models.ClientRecord, error)
}
