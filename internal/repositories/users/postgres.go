package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/itsmng/oktasync/internal/common"
	"github.com/itsmng/oktasync/internal/dbx"
)

// PostgresRepository implements Repository against the host's user tables
// (users plus the one-to-many user_emails table).
type PostgresRepository struct {
	db        dbx.DBTX
	authTypes []int
}

// NewPostgresRepository builds a repository restricted to the given auth
// types; nil defaults to LDAP- and externally-managed accounts.
func NewPostgresRepository(db dbx.DBTX, authTypes []int) *PostgresRepository {
	if authTypes == nil {
		authTypes = []int{AuthLDAP, AuthExternal}
	}
	return &PostgresRepository{db: db, authTypes: authTypes}
}

// authTypeList renders the auth-type restriction for interpolation. The
// values are repository-owned integers, never user input.
func (r *PostgresRepository) authTypeList() string {
	parts := make([]string, len(r.authTypes))
	for i, t := range r.authTypes {
		parts[i] = fmt.Sprintf("%d", t)
	}
	return strings.Join(parts, ", ")
}

func (r *PostgresRepository) scanID(row *sql.Row) (int64, error) {
	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) FindIDByEmail(ctx context.Context, email string) (int64, error) {
	if strings.TrimSpace(email) == "" {
		return 0, common.ErrorNotFound
	}

	query := fmt.Sprintf(
		`SELECT users.id FROM users
		 INNER JOIN user_emails ON user_emails.users_id = users.id
		 WHERE user_emails.email = $1 AND users.authtype IN (%s)
		 LIMIT 1`, r.authTypeList())

	return r.scanID(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindIDByAttribute(ctx context.Context, column, value string) (int64, error) {
	if column == "email" {
		return r.FindIDByEmail(ctx, value)
	}
	if !columnAllowed(column) {
		return 0, fmt.Errorf("unknown user column %q", column)
	}

	query := fmt.Sprintf(
		`SELECT id FROM users
		 WHERE %s = $1 AND authtype IN (%s)
		 LIMIT 1`, column, r.authTypeList())

	return r.scanID(r.db.QueryRowContext(ctx, query, value))
}

func (r *PostgresRepository) FindIDByLogin(ctx context.Context, login string) (int64, error) {
	query := fmt.Sprintf(
		`SELECT id FROM users
		 WHERE name = $1 AND authtype IN (%s)
		 LIMIT 1`, r.authTypeList())

	return r.scanID(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID int64, fields map[string]string) error {
	var (
		assignments []string
		args        []any
	)
	for _, spec := range []string{"name", "firstname", "realname", "phone", "groups"} {
		value, ok := fields[spec]
		if !ok {
			continue
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", spec, len(args)))
	}

	if len(assignments) > 0 {
		args = append(args, userID)
		query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
			strings.Join(assignments, ", "), len(args))
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	if email, ok := fields["email"]; ok && email != "" {
		query := `INSERT INTO user_emails (users_id, email)
		          VALUES ($1, $2)
		          ON CONFLICT (users_id, email) DO NOTHING`
		if _, err := r.db.ExecContext(ctx, query, userID, email); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) UpdateSupervisor(ctx context.Context, userID, supervisorID int64) error {
	query := `UPDATE users SET supervisor_id = $1
	          WHERE id = $2 AND supervisor_id IS DISTINCT FROM $1`
	if _, err := r.db.ExecContext(ctx, query, supervisorID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	query := `UPDATE users SET is_active = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, active, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListManaged(ctx context.Context, includeLDAP bool) ([]Account, error) {
	authTypes := "authtype = $1"
	args := []any{AuthExternal}
	if includeLDAP {
		authTypes = "authtype IN ($1, $2)"
		args = append(args, AuthLDAP)
	}

	query := fmt.Sprintf("SELECT id, is_active FROM users WHERE %s ORDER BY id", authTypes)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Active); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return accounts, nil
}
