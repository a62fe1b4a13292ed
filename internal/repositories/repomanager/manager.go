package repomanager

import (
	"context"
	"database/sql"

	"github.com/itsmng/oktasync/internal/dbx"
	"github.com/itsmng/oktasync/internal/repositories/settings"
	"github.com/itsmng/oktasync/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Settings(db dbx.DBTX) settings.Repository
}
