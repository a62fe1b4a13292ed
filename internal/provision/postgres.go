package provision

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itsmng/oktasync/internal/common"
	"github.com/itsmng/oktasync/internal/dbx"
	"github.com/itsmng/oktasync/internal/repositories/users"
)

// PostgresProvisioner creates externally-managed accounts directly in the
// local store. It stands in for the host's rule-based provisioning when the
// engine runs standalone.
type PostgresProvisioner struct {
	db *sql.DB
}

func NewPostgresProvisioner(db *sql.DB) *PostgresProvisioner {
	return &PostgresProvisioner{db: db}
}

// CreateAccount inserts the user row and its initial email in one
// transaction; a half-created account would defeat the duplicate lookup on
// the next run.
func (p *PostgresProvisioner) CreateAccount(ctx context.Context, acct NewAccount) (int64, error) {
	if acct.Login == "" {
		return 0, fmt.Errorf("%w: empty login", common.ErrorProvisioning)
	}

	var id int64
	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO users (name, authtype, is_active)
		          VALUES ($1, $2, TRUE)
		          RETURNING id`
		if err := tx.QueryRowContext(ctx, query, acct.Login, users.AuthExternal).Scan(&id); err != nil {
			return err
		}
		if acct.Email == "" {
			return nil
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_emails (users_id, email) VALUES ($1, $2)`, id, acct.Email)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorProvisioning, err)
	}
	return id, nil
}
