package identity

import (
	"context"
	"iter"
)

// RoleDirectory is thin logic over the CredentialStore for role existence
// checks, membership assignment, and a read-only projection of all users.
type RoleDirectory struct {
	store  CredentialStore
	logger Logger
}

// NewRoleDirectory returns a directory backed by the given store.
func NewRoleDirectory(store CredentialStore) *RoleDirectory {
	return &RoleDirectory{
		store:  store,
		logger: defLogger{},
	}
}

func (d *RoleDirectory) WithLogger(logger Logger) *RoleDirectory {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// FindRoleByName looks up a role by its unique name.
func (d *RoleDirectory) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	return d.store.FindRoleByName(ctx, name)
}

// AssignRole grants roleName to the user. It fails with ErrUnknownRole when
// the role does not exist; assigning a role the user already holds is a
// no-op success.
func (d *RoleDirectory) AssignRole(ctx context.Context, user *User, roleName string) error {
	return d.store.AssignRole(ctx, user, roleName)
}

// RolesOf returns the role names currently held by the user.
func (d *RoleDirectory) RolesOf(ctx context.Context, user *User) ([]string, error) {
	return d.store.RolesOf(ctx, user)
}

// GetUsers returns a lazy, read-only projection of all users. Rows are
// fetched as the caller iterates; breaking out of the loop releases the
// underlying cursor.
func (d *RoleDirectory) GetUsers(ctx context.Context) iter.Seq2[*User, error] {
	return d.store.ListUsers(ctx)
}
