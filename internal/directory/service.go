// Package directory implements the client directory: schema lifecycle,
// transactional mutations and filtered searches over the clients/phones
// relation.
package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clientdir/internal/common"
	"github.com/dmitrijs2005/clientdir/internal/dbx"
	"github.com/dmitrijs2005/clientdir/internal/logging"
	"github.com/dmitrijs2005/clientdir/internal/models"
	"github.com/dmitrijs2005/clientdir/internal/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// Service exposes every operation of the client directory. Multi-statement
// mutations run inside a transaction via dbx.WithTx: committed on success,
// fully rolled back on any failure, so no partial state is ever observable.
// Single-statement mutations rely on the engine's per-statement atomicity.
type Service struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	validate *validator.Validate
	logger   logging.Logger
}

// NewService constructs a Service on top of an open connection pool.
func NewService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *Service {
	return &Service{
		db:       db,
		rm:       rm,
		validate: validator.New(),
		logger:   logger,
	}
}

// InitializeSchema creates the clients and phones tables with their
// constraints. Safe to call repeatedly.
func (s *Service) InitializeSchema(ctx context.Context) error {
	return s.rm.RunMigrations(ctx, s.db)
}

// ResetSchema drops both tables, phones before clients. Destructive and
// unconditional; intended for test/setup use.
func (s *Service) ResetSchema(ctx context.Context) error {
	return s.rm.ResetSchema(ctx, s.db)
}

// CreateClient inserts a client and, when a phone list is supplied, its
// phones, as one atomic unit. Returns the new client id. An email collision
// surfaces as ErrDuplicateKey and nothing is committed.
func (s *Service) CreateClient(ctx context.Context, arg models.NewClient) (int64, error) {
	if err := s.validate.Struct(arg); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	var id int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		id, err = s.rm.Clients(tx).Create(ctx, arg.FirstName, arg.LastName, arg.Email)
		if err != nil {
			return err
		}
		phonesRepo := s.rm.Phones(tx)
		for _, number := range arg.Phones {
			if err := phonesRepo.Add(ctx, id, number); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "client created", "client_id", id)
	return id, nil
}

// UpsertClientByEmail inserts a client keyed on its email or, when a client
// with that email already exists, updates it in place; the supplied phone
// list, when non-nil, replaces the existing phone set. The whole operation
// is one transaction built on the engine's conflict-safe upsert, so
// concurrent callers racing on the same email cannot create duplicates.
func (s *Service) UpsertClientByEmail(ctx context.Context, arg models.NewClient) (int64, error) {
	if err := s.validate.Struct(arg); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if arg.Email == nil || *arg.Email == "" {
		return 0, fmt.Errorf("%w: email is required for upsert", common.ErrInvalidInput)
	}

	var id int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		id, err = s.rm.Clients(tx).UpsertByEmail(ctx, arg.FirstName, arg.LastName, *arg.Email)
		if err != nil {
			return err
		}
		if arg.Phones != nil {
			return s.rm.Phones(tx).Replace(ctx, id, arg.Phones)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "client upserted", "client_id", id)
	return id, nil
}

// AddPhone inserts one phone row for an existing client. A client id that
// does not resolve surfaces as ErrForeignKeyViolation.
func (s *Service) AddPhone(ctx context.Context, clientID int64, number string) error {
	if number == "" {
		return fmt.Errorf("%w: phone number must not be empty", common.ErrInvalidInput)
	}
	if err := s.rm.Phones(s.db).Add(ctx, clientID, number); err != nil {
		return err
	}
	s.logger.Info(ctx, "phone added", "client_id", clientID)
	return nil
}

// UpdateClient applies a sparse update: only the fields present in upd
// change. A non-nil phone list, including an empty one, atomically replaces
// the whole phone set. An update carrying no fields at all is a no-op.
func (s *Service) UpdateClient(ctx context.Context, clientID int64, upd models.ClientUpdate) error {
	if upd.IsZero() {
		return nil
	}
	if (upd.FirstName != nil && *upd.FirstName == "") || (upd.LastName != nil && *upd.LastName == "") {
		return fmt.Errorf("%w: name fields must not be set to empty values", common.ErrInvalidInput)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Clients(tx).UpdateSparse(ctx, clientID, upd); err != nil {
			return err
		}
		if upd.Phones != nil {
			return s.rm.Phones(tx).Replace(ctx, clientID, *upd.Phones)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "client updated", "client_id", clientID)
	return nil
}

// DeletePhone removes every phone row matching the exact (client, number)
// pair. Deleting a pairing that never existed is a silent success.
func (s *Service) DeletePhone(ctx context.Context, clientID int64, number string) error {
	if err := s.rm.Phones(s.db).DeleteByNumber(ctx, clientID, number); err != nil {
		return err
	}
	s.logger.Info(ctx, "phone deleted", "client_id", clientID)
	return nil
}

// DeleteClient removes the client row; the cascade constraint removes all
// owned phones with it. Deleting a missing id is a silent success.
func (s *Service) DeleteClient(ctx context.Context, clientID int64) error {
	if err := s.rm.Clients(s.db).Delete(ctx, clientID); err != nil {
		return err
	}
	s.logger.Info(ctx, "client deleted", "client_id", clientID)
	return nil
}

// FindClients returns the clients matching the filter, each aggregating its
// full phone list. No filters returns every client; an empty result is a
// normal, successful outcome.
func (s *Service) FindClients(ctx context.Context, filter models.SearchFilter) ([]models.ClientRecord, error) {
	return s.rm.Clients(s.db).Search(ctx, filter)
}
