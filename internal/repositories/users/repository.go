// Package users is the repository over the local user store. The import
// engine only reads identities and issues targeted updates here; account
// creation is delegated to the provisioning capability.
package users

import "context"

// Local auth-type tags for externally managed accounts.
const (
	AuthLDAP     = 3
	AuthExternal = 4
)

// Account is the slice of a local record the deactivation sweep needs.
type Account struct {
	ID     int64
	Active bool
}

// Columns that lookups and profile writes may touch. Guarded here because
// column names cannot be bound as query parameters.
var allowedColumns = map[string]struct{}{
	"name":      {},
	"firstname": {},
	"realname":  {},
	"email":     {},
	"phone":     {},
	"groups":    {},
}

func columnAllowed(column string) bool {
	_, ok := allowedColumns[column]
	return ok
}

// Repository finds and mutates local user records by identity attributes.
// Lookups are restricted to externally/LDAP-managed accounts and return
// common.ErrorNotFound when nothing matches.
type Repository interface {
	// FindIDByEmail resolves a user by exact email. A blank email
	// short-circuits to not-found without a query.
	FindIDByEmail(ctx context.Context, email string) (int64, error)

	// FindIDByAttribute resolves a user by the duplicate-key column.
	FindIDByAttribute(ctx context.Context, column, value string) (int64, error)

	// FindIDByLogin is the exact-name fallback lookup.
	FindIDByLogin(ctx context.Context, login string) (int64, error)

	// UpdateProfile writes the given column => value pairs on one account.
	UpdateProfile(ctx context.Context, userID int64, fields map[string]string) error

	// UpdateSupervisor sets the manager link; setting the same value twice
	// is a no-op.
	UpdateSupervisor(ctx context.Context, userID, supervisorID int64) error

	// SetActive toggles the active flag.
	SetActive(ctx context.Context, userID int64, active bool) error

	// ListManaged returns every externally-managed account, optionally
	// including LDAP-managed ones.
	ListManaged(ctx context.Context, includeLDAP bool) ([]Account, error)
}
