package directory

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clientdir/internal/common"
	"github.com/dmitrijs2005/clientdir/internal/logging"
	"github.com/dmitrijs2005/clientdir/internal/models"
	"github.com/dmitrijs2005/clientdir/internal/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServiceWithMock(t *testing.T) (*Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewService(db, repomanager.NewPostgresRepositoryManager(), logger)
	return svc, mock, db
}

func ptr(s string) *string { return &s }

const insertClientQ = `(?s)^\s*INSERT\s+INTO\s+clients\s*\(first_name,\s*last_name,\s*email\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+client_id\s*$`
const upsertClientQ = `(?s)INSERT\s+INTO\s+clients.*ON\s+CONFLICT\s*\(email\).*RETURNING\s+client_id`
const insertPhoneQ = `(?s)^\s*INSERT\s+INTO\s+phones\s*\(client_id,\s*phone_number\)\s*VALUES\s*\(\$1,\s*\$2\)\s*$`
const deletePhonesQ = `^DELETE\s+FROM\s+phones\s+WHERE\s+client_id\s*=\s*\$1$`

func TestCreateClient_WithPhones_CommitsOneUnit(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(insertClientQ).
		WithArgs("Kate", "Ivanova", "kate@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}).AddRow(int64(1)))
	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(1), "+79111111111").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(1), "+79112222222").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	id, err := svc.CreateClient(context.Background(), models.NewClient{
		FirstName: "Kate",
		LastName:  "Ivanova",
		Email:     ptr("kate@example.com"),
		Phones:    []string{"+79111111111", "+79112222222"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClient_DuplicateEmail_RollsBack(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(insertClientQ).
		WithArgs("Kate", "Ivanova", "kate@example.com").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "clients_email_key"})
	mock.ExpectRollback()

	_, err := svc.CreateClient(context.Background(), models.NewClient{
		FirstName: "Kate",
		LastName:  "Ivanova",
		Email:     ptr("kate@example.com"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClient_PhoneInsertFails_RollsBackClientToo(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(insertClientQ).
		WithArgs("Kate", "Ivanova", "kate@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}).AddRow(int64(1)))
	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(1), "+1").
		WillReturnError(&pgconn.PgError{Code: "08006"})
	mock.ExpectRollback()

	_, err := svc.CreateClient(context.Background(), models.NewClient{
		FirstName: "Kate",
		LastName:  "Ivanova",
		Email:     ptr("kate@example.com"),
		Phones:    []string{"+1"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClient_EmptyName_IsInvalidInput(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	_, err := svc.CreateClient(context.Background(), models.NewClient{
		FirstName: "",
		LastName:  "Ivanova",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet(), "validation must reject before touching the database")
}

func TestUpsertClientByEmail_ReplacesPhoneSet(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(upsertClientQ).
		WithArgs("Daniel", "Petrov", "danil@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}).AddRow(int64(2)))
	mock.ExpectExec(deletePhonesQ).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(2), "+79113333333").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	id, err := svc.UpsertClientByEmail(context.Background(), models.NewClient{
		FirstName: "Daniel",
		LastName:  "Petrov",
		Email:     ptr("danil@example.com"),
		Phones:    []string{"+79113333333"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertClientByEmail_NilPhonesLeavesSetUntouched(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(upsertClientQ).
		WithArgs("Daniel", "Petrov", "danil@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	_, err := svc.UpsertClientByEmail(context.Background(), models.NewClient{
		FirstName: "Daniel",
		LastName:  "Petrov",
		Email:     ptr("danil@example.com"),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertClientByEmail_RequiresEmail(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	_, err := svc.UpsertClientByEmail(context.Background(), models.NewClient{
		FirstName: "Daniel",
		LastName:  "Petrov",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPhone_UnknownClient(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(99), "+1").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := svc.AddPhone(context.Background(), 99, "+1")
	assert.ErrorIs(t, err, common.ErrForeignKeyViolation)
}

func TestAddPhone_EmptyNumber(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	err := svc.AddPhone(context.Background(), 1, "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateClient_NoFieldsIsNoOp(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	require.NoError(t, svc.UpdateClient(context.Background(), 1, models.ClientUpdate{}))
	require.NoError(t, mock.ExpectationsWereMet(), "a no-op update must not touch the database")
}

func TestUpdateClient_FieldsAndPhones_OneTransaction(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE\s+clients\s+SET\s+first_name\s*=\s*\$1,\s*email\s*=\s*\$2\s+WHERE\s+client_id\s*=\s*\$3$`).
		WithArgs("Ivan", "ivan_new@example.com", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deletePhonesQ).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(1), "+2").
		WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(1), "+3").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	phones := []string{"+2", "+3"}
	err := svc.UpdateClient(context.Background(), 1, models.ClientUpdate{
		FirstName: ptr("Ivan"),
		Email:     ptr("ivan_new@example.com"),
		Phones:    &phones,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateClient_PhonesOnly_SupersedesPreviousList(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(deletePhonesQ).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertPhoneQ).
		WithArgs(int64(1), "+2").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectCommit()

	phones := []string{"+2"}
	err := svc.UpdateClient(context.Background(), 1, models.ClientUpdate{Phones: &phones})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateClient_EmptyPhoneListClearsSet(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(deletePhonesQ).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	phones := []string{}
	err := svc.UpdateClient(context.Background(), 1, models.ClientUpdate{Phones: &phones})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateClient_EmptyNameValueIsInvalid(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	err := svc.UpdateClient(context.Background(), 1, models.ClientUpdate{FirstName: ptr("")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateClient_DuplicateEmail_RollsBack(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE\s+clients\s+SET\s+email\s*=\s*\$1\s+WHERE\s+client_id\s*=\s*\$2$`).
		WithArgs("taken@example.com", int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := svc.UpdateClient(context.Background(), 1, models.ClientUpdate{Email: ptr("taken@example.com")})
	assert.ErrorIs(t, err, common.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePhone_MissingPairingIsSilentSuccess(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+phones\s+WHERE\s+client_id\s*=\s*\$1\s+AND\s+phone_number\s*=\s*\$2\s*$`).
		WithArgs(int64(1), "+999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, svc.DeletePhone(context.Background(), 1, "+999"))
}

func TestDeleteClient_Success(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+clients\s+WHERE\s+client_id\s*=\s*\$1$`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.DeleteClient(context.Background(), 2))
}

func TestFindClients_AggregatesPhoneLists(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+c\.client_id.*GROUP\s+BY\s+c\.client_id`).
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "first_name", "last_name", "email", "phones"}).
			AddRow(int64(2), "Daniel", "Petrov", "danil@example.com", "{+79113333333}"))

	got, err := svc.FindClients(context.Background(), models.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"+79113333333"}, got[0].Phones)
}
