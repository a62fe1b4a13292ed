// Package provision is the boundary to the host's account-provisioning
// subsystem. The import engine hands over a normalized identity hint and
// gets back a new local user id; naming rules and default rights stay on
// the host's side of the interface.
package provision

import "context"

// NewAccount is the identity hint for a brand-new local account.
type NewAccount struct {
	Login string
	Email string
}

// Provisioner creates local accounts. A failure means "this candidate could
// not be created"; the engine does not retry within the same run.
type Provisioner interface {
	CreateAccount(ctx context.Context, acct NewAccount) (int64, error)
}
