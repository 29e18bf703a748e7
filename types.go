package identity

import (
	"context"
	"fmt"
	"iter"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	DateOfBirth() time.Time
	Roles() []string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
}

// CredentialStore persists users and roles, enforces username/email
// uniqueness, and owns password verification including any lockout policy.
// Every mutation is atomic at the store; the core adds no locking on top.
type CredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User, password string) (*User, error)
	VerifyPassword(ctx context.Context, username, password string) error
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, name string) (*Role, error)
	AssignRole(ctx context.Context, user *User, roleName string) error
	RolesOf(ctx context.Context, user *User) ([]string, error)
	ListUsers(ctx context.Context) iter.Seq2[*User, error]
}

// TokenIssuer assembles a claim set from an identity and produces a signed,
// expiring token string.
type TokenIssuer interface {
	IssueToken(identity Identity) (string, error)
}

// TokenValidator validates a raw token and returns its structured claims.
type TokenValidator interface {
	Validate(token string) (AuthClaims, error)
}

// TokenService issues and validates tokens
type TokenService interface {
	TokenIssuer
	TokenValidator
}

type LoginPayload interface {
	GetUsername() string
	GetPassword() string
}

// Config holds identity options. The signing key is external configuration;
// it is never embedded in the package.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
