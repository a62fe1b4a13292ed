package provision

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/itsmng/oktasync/internal/common"
	"github.com/itsmng/oktasync/internal/repositories/users"
)

func newProvWithMock(t *testing.T) (*PostgresProvisioner, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresProvisioner(db), mock, db
}

func TestCreateAccount_Success(t *testing.T) {
	prov, mock, db := newProvWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(name,\s*authtype,\s*is_active\)\s+VALUES\s*\(\$1,\s*\$2,\s*TRUE\)\s+RETURNING\s+id\s*$`).
		WithArgs("alice", users.AuthExternal).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+user_emails\s*\(users_id,\s*email\)\s+VALUES\s*\(\$1,\s*\$2\)\s*$`).
		WithArgs(int64(42), "alice@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := prov.CreateAccount(context.Background(), NewAccount{Login: "alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}
	if id != 42 {
		t.Fatalf("unexpected id: %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAccount_NoEmailSkipsEmailInsert(t *testing.T) {
	prov, mock, db := newProvWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WithArgs("alice", users.AuthExternal).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	id, err := prov.CreateAccount(context.Background(), NewAccount{Login: "alice"})
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}
	if id != 7 {
		t.Fatalf("unexpected id: %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAccount_EmptyLogin(t *testing.T) {
	prov, mock, db := newProvWithMock(t)
	defer db.Close()

	_, err := prov.CreateAccount(context.Background(), NewAccount{Email: "x@x.com"})
	if !errors.Is(err, common.ErrorProvisioning) {
		t.Fatalf("want common.ErrorProvisioning, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db access: %v", err)
	}
}

func TestCreateAccount_RollsBackOnEmailError(t *testing.T) {
	prov, mock, db := newProvWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WithArgs("alice", users.AuthExternal).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+user_emails`).
		WithArgs(int64(42), "alice@x.com").
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := prov.CreateAccount(context.Background(), NewAccount{Login: "alice", Email: "alice@x.com"})
	if !errors.Is(err, common.ErrorProvisioning) {
		t.Fatalf("want common.ErrorProvisioning, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
