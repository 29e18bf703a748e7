package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// RoleAdministrator is seeded by Bootstrap and never created elsewhere.
	RoleAdministrator = "Administrator"
	// RoleUser is the baseline role every registered account holds.
	RoleUser = "User"
)

// RequiredRoles is the fixed ordered list Bootstrap guarantees to exist.
func RequiredRoles() []string {
	return []string{RoleAdministrator, RoleUser}
}

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	Enabled        bool       `bun:"enabled,notnull" json:"enabled"`
	EmailConfirmed bool       `bun:"is_email_confirmed" json:"is_email_confirmed,omitempty"`
	DateOfBirth    time.Time  `bun:"date_of_birth,nullzero" json:"date_of_birth,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	Roles          []*Role    `bun:"m2m:user_roles,join:User=Role" json:"roles,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// RoleNames flattens the loaded role relation into a list of names.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r != nil {
			names = append(names, r.Name)
		}
	}
	return names
}

// HasRole checks the loaded role relation; it does not hit the store.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r != nil && r.Name == name {
			return true
		}
	}
	return false
}

// Role is the role model. Roles are created only by Bootstrap and are
// immutable thereafter; names are globally unique.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserRoleMembership is the many-to-many join between users and roles.
type UserRoleMembership struct {
	bun.BaseModel `bun:"table:user_roles,alias:usrrol"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	RoleID        uuid.UUID `bun:"role_id,pk,type:uuid" json:"role_id"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id" json:"-"`
}
