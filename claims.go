package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DateOfBirthFormat is the canonical, parseable layout for the dob claim.
const DateOfBirthFormat = time.DateOnly

// AuthClaims represents the structured claim set carried by issued tokens
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Email() string
	DateOfBirth() (time.Time, error)
	SessionID() string
	AuthenticatedAt() time.Time
	Roles() []string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string   `json:"uid,omitempty"`
	Name     string   `json:"username,omitempty"`
	Mail     string   `json:"email,omitempty"`
	DoB      string   `json:"dob,omitempty"`
	SID      string   `json:"sid,omitempty"`
	AuthTime int64    `json:"auth_time,omitempty"`
	RoleSet  []string `json:"roles,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the username claim
func (c *JWTClaims) Username() string {
	return c.Name
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.Mail
}

// DateOfBirth parses the dob claim using DateOfBirthFormat.
func (c *JWTClaims) DateOfBirth() (time.Time, error) {
	return time.Parse(DateOfBirthFormat, c.DoB)
}

// SessionID returns the per-issuance session correlation value. It is
// freshly generated for every token and never derived from user state.
func (c *JWTClaims) SessionID() string {
	return c.SID
}

// AuthenticatedAt returns the authentication-time claim.
func (c *JWTClaims) AuthenticatedAt() time.Time {
	if c.AuthTime == 0 {
		return time.Time{}
	}
	return time.Unix(c.AuthTime, 0)
}

// Roles returns one entry per role held by the user at issuance time.
func (c *JWTClaims) Roles() []string {
	return c.RoleSet
}

// HasRole checks if the claim set carries a specific role
func (c *JWTClaims) HasRole(role string) bool {
	for _, r := range c.RoleSet {
		if r == role {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
