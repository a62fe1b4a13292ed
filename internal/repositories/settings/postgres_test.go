package settings

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetAll_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+name,\s*value\s+FROM\s+okta_settings\s*$`

	rows := sqlmock.NewRows([]string{"name", "value"}).
		AddRow("url", "https://dev.okta.example").
		AddRow("group", "Engineering")
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if got["url"] != "https://dev.okta.example" || got["group"] != "Engineering" {
		t.Fatalf("unexpected values: %+v", got)
	}
}

func TestGetAll_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+name,\s*value\s+FROM\s+okta_settings\s*$`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}))

	got, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unexpected values: %+v", got)
	}
}

func TestGetAll_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+name,\s*value\s+FROM\s+okta_settings\s*$`).
		WillReturnError(errors.New("db down"))

	_, err := repo.GetAll(context.Background())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSet_Upsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+okta_settings\s*\(name,\s*value\)\s+VALUES\s*\(\$1,\s*\$2\)\s+ON\s+CONFLICT\s*\(name\)\s+DO\s+UPDATE\s+SET\s+value\s*=\s*EXCLUDED\.value\s*$`

	mock.ExpectExec(q).
		WithArgs("group", "Engineering").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), "group", "Engineering"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+okta_settings`).
		WithArgs("group", "Engineering").
		WillReturnError(errors.New("db down"))

	err := repo.Set(context.Background(), "group", "Engineering")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
