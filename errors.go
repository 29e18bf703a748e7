package identity

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidLoginAttempt = "INVALID_LOGIN_ATTEMPT"
	textCodeUserDisabled        = "USER_DISABLED"
	textCodeLoginFailed         = "LOGIN_FAILED"
	textCodeDuplicateIdentity   = "DUPLICATE_IDENTITY"
	textCodeUnknownRole         = "UNKNOWN_ROLE"
	textCodeRoleExists          = "ROLE_EXISTS"
	textCodeTokenExpired        = "TOKEN_EXPIRED"
	textCodeTokenMalformed      = "TOKEN_MALFORMED"
)

// ErrInvalidLoginAttempt is returned when the login username matches no account.
var ErrInvalidLoginAttempt = goerrors.New("invalid login attempt", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidLoginAttempt).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserDisabled is returned when the account exists but is disabled. It is
// checked before credential verification so disabled accounts never leak
// whether the password was valid.
var ErrUserDisabled = goerrors.New("user is disabled", goerrors.CategoryAuth).
	WithTextCode(textCodeUserDisabled).
	WithCode(goerrors.CodeForbidden)

// ErrLoginFailed is returned when the store rejects the credentials for an
// enabled account, whether from a hash mismatch or a lockout policy.
var ErrLoginFailed = goerrors.New("login failed", goerrors.CategoryAuth).
	WithTextCode(textCodeLoginFailed).
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateIdentity is returned when a username or email is already taken.
var ErrDuplicateIdentity = goerrors.New("username or email already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateIdentity).
	WithCode(goerrors.CodeConflict)

// ErrUnknownRole is returned when assigning a role that does not exist.
var ErrUnknownRole = goerrors.New("unknown role", goerrors.CategoryNotFound).
	WithTextCode(textCodeUnknownRole).
	WithCode(goerrors.CodeNotFound)

// ErrRoleExists is returned by CreateRole for an existing role name.
// Bootstrap swallows it; it is an expected steady-state outcome there.
var ErrRoleExists = goerrors.New("role already exists", goerrors.CategoryConflict).
	WithTextCode(textCodeRoleExists).
	WithCode(goerrors.CodeConflict)

// ErrMismatchedHashAndPassword is the store-internal credential mismatch error.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(textCodeLoginFailed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts is the store-internal lockout error.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode(textCodeLoginFailed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput)

// ErrTokenExpired is returned by the validator for expired tokens.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned by the validator for undecodable tokens.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// IsInvalidLoginAttempt reports whether err classifies as an unknown-account login.
func IsInvalidLoginAttempt(err error) bool {
	return hasTextCode(err, textCodeInvalidLoginAttempt)
}

// IsUserDisabled reports whether err classifies as a disabled-account login.
func IsUserDisabled(err error) bool {
	return hasTextCode(err, textCodeUserDisabled)
}

// IsLoginFailed reports whether err classifies as a credential rejection.
func IsLoginFailed(err error) bool {
	return hasTextCode(err, textCodeLoginFailed)
}

// IsDuplicateIdentity reports whether err is a uniqueness violation.
func IsDuplicateIdentity(err error) bool {
	return hasTextCode(err, textCodeDuplicateIdentity)
}

// IsUnknownRole reports whether err references a role that does not exist.
func IsUnknownRole(err error) bool {
	return hasTextCode(err, textCodeUnknownRole)
}

// IsRoleExists reports whether err is a role pre-existence rejection.
func IsRoleExists(err error) bool {
	return hasTextCode(err, textCodeRoleExists)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, textCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, textCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
