package users

import (
	"context"
	"strings"

	"github.com/itsmng/oktasync/internal/common"
)

// MemoryUser is one record in the in-memory store.
type MemoryUser struct {
	ID           int64
	AuthType     int
	Active       bool
	SupervisorID int64
	Fields       map[string]string
	Emails       []string
}

// Memory is the in-memory Repository used by tests and local experiments.
// It counts writes so idempotence ("no redundant writes") is observable.
type Memory struct {
	nextID int64
	Users  map[int64]*MemoryUser

	ProfileWrites    int
	SupervisorWrites int
	ActiveWrites     int
}

func NewMemory() *Memory {
	return &Memory{Users: map[int64]*MemoryUser{}}
}

// Add inserts a record and returns its id. Used by tests to seed state and
// by the memory provisioner to create accounts.
func (m *Memory) Add(u MemoryUser) int64 {
	m.nextID++
	u.ID = m.nextID
	if u.Fields == nil {
		u.Fields = map[string]string{}
	}
	m.Users[u.ID] = &u
	return u.ID
}

func (m *Memory) managed(u *MemoryUser) bool {
	return u.AuthType == AuthLDAP || u.AuthType == AuthExternal
}

func (m *Memory) findID(match func(*MemoryUser) bool) (int64, error) {
	var found int64
	for id, u := range m.Users {
		if !m.managed(u) || !match(u) {
			continue
		}
		if found == 0 || id < found {
			found = id
		}
	}
	if found == 0 {
		return 0, common.ErrorNotFound
	}
	return found, nil
}

func (m *Memory) FindIDByEmail(ctx context.Context, email string) (int64, error) {
	if strings.TrimSpace(email) == "" {
		return 0, common.ErrorNotFound
	}
	return m.findID(func(u *MemoryUser) bool {
		for _, e := range u.Emails {
			if e == email {
				return true
			}
		}
		return false
	})
}

func (m *Memory) FindIDByAttribute(ctx context.Context, column, value string) (int64, error) {
	if column == "email" {
		return m.FindIDByEmail(ctx, value)
	}
	return m.findID(func(u *MemoryUser) bool {
		return u.Fields[column] == value
	})
}

func (m *Memory) FindIDByLogin(ctx context.Context, login string) (int64, error) {
	return m.findID(func(u *MemoryUser) bool {
		return u.Fields["name"] == login
	})
}

func (m *Memory) user(userID int64) (*MemoryUser, error) {
	u, ok := m.Users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *Memory) UpdateProfile(ctx context.Context, userID int64, fields map[string]string) error {
	u, err := m.user(userID)
	if err != nil {
		return err
	}
	m.ProfileWrites++
	for column, value := range fields {
		if column == "email" {
			if value != "" && !containsString(u.Emails, value) {
				u.Emails = append(u.Emails, value)
			}
			continue
		}
		u.Fields[column] = value
	}
	return nil
}

func (m *Memory) UpdateSupervisor(ctx context.Context, userID, supervisorID int64) error {
	u, err := m.user(userID)
	if err != nil {
		return err
	}
	// setting the same value twice is a no-op
	if u.SupervisorID != supervisorID {
		m.SupervisorWrites++
		u.SupervisorID = supervisorID
	}
	return nil
}

func (m *Memory) SetActive(ctx context.Context, userID int64, active bool) error {
	u, err := m.user(userID)
	if err != nil {
		return err
	}
	m.ActiveWrites++
	u.Active = active
	return nil
}

func (m *Memory) ListManaged(ctx context.Context, includeLDAP bool) ([]Account, error) {
	var accounts []Account
	for id := int64(1); id <= m.nextID; id++ {
		u, ok := m.Users[id]
		if !ok {
			continue
		}
		if u.AuthType == AuthExternal || (includeLDAP && u.AuthType == AuthLDAP) {
			accounts = append(accounts, Account{ID: u.ID, Active: u.Active})
		}
	}
	return accounts, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
