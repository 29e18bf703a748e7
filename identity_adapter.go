package identity

import "time"

// UserIdentity adapts a User plus its current role set into the Identity
// interface for token issuance.
type UserIdentity struct {
	user  *User
	roles []string
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
// roles should be the role names currently held, as reported by the store.
func NewIdentityFromUser(user *User, roles []string) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user, roles: roles}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// Username returns the user's username.
func (u UserIdentity) Username() string {
	if u.user == nil {
		return ""
	}
	return u.user.Username
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// DateOfBirth returns the user's stored date of birth.
func (u UserIdentity) DateOfBirth() time.Time {
	if u.user == nil {
		return time.Time{}
	}
	return u.user.DateOfBirth
}

// Roles returns the role names held at adaptation time.
func (u UserIdentity) Roles() []string {
	return u.roles
}
