package provision

import (
	"context"
	"fmt"

	"github.com/itsmng/oktasync/internal/common"
	"github.com/itsmng/oktasync/internal/repositories/users"
)

// MemoryProvisioner creates accounts in an in-memory user store. The Fail
// hook lets tests simulate the host refusing a candidate.
type MemoryProvisioner struct {
	Store *users.Memory
	Fail  func(acct NewAccount) bool
}

func NewMemoryProvisioner(store *users.Memory) *MemoryProvisioner {
	return &MemoryProvisioner{Store: store}
}

func (p *MemoryProvisioner) CreateAccount(ctx context.Context, acct NewAccount) (int64, error) {
	if p.Fail != nil && p.Fail(acct) {
		return 0, fmt.Errorf("%w: %s", common.ErrorProvisioning, acct.Login)
	}
	u := users.MemoryUser{
		AuthType: users.AuthExternal,
		Active:   true,
		Fields:   map[string]string{"name": acct.Login},
	}
	if acct.Email != "" {
		u.Emails = []string{acct.Email}
	}
	return p.Store.Add(u), nil
}
