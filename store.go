package identity

import (
	"context"
	"iter"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// MaxLoginAttempts is the maximum number of failed attempts an account gets
// inside the cool down window before verification is refused outright.
var MaxLoginAttempts = 5

// CoolDownPeriod is the window in which failed attempts accumulate.
var CoolDownPeriod = "24h"

// BunCredentialStore is the Bun-backed CredentialStore. It owns password
// hashing/verification and the lockout policy; the core never sees plaintext
// hashes or attempt counters.
type BunCredentialStore struct {
	repo   RepositoryManager
	db     *bun.DB
	logger Logger
}

var _ CredentialStore = (*BunCredentialStore)(nil)

// NewCredentialStore wires the repositories over db and registers the
// membership join model so m2m relations resolve.
func NewCredentialStore(db *bun.DB) *BunCredentialStore {
	db.RegisterModel((*UserRoleMembership)(nil))

	return &BunCredentialStore{
		repo:   NewRepositoryManager(db),
		db:     db,
		logger: defLogger{},
	}
}

func (s *BunCredentialStore) WithLogger(logger Logger) *BunCredentialStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Manager exposes the underlying repositories for callers that need
// transactional access.
func (s *BunCredentialStore) Manager() RepositoryManager {
	return s.repo
}

func (s *BunCredentialStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.Users().FindByUsername(ctx, username)
}

// CreateUser hashes the password and persists the record. Uniqueness of
// username and email is enforced here; violations surface as
// ErrDuplicateIdentity.
func (s *BunCredentialStore) CreateUser(ctx context.Context, user *User, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	user.PasswordHash = hash

	created, err := s.repo.Users().Create(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	return created, nil
}

// VerifyPassword performs the sign-in check: hash comparison plus the
// attempt based lockout policy. Attempt counters reset once the cool down
// window has passed or on a successful login.
func (s *BunCredentialStore) VerifyPassword(ctx context.Context, username, password string) error {
	user, err := s.repo.Users().FindByUsername(ctx, username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrMismatchedHashAndPassword
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// if we have too many attempts in the given window, cool off!
	if user.LoginAttempts > MaxLoginAttempts {
		return ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := s.repo.Users().TrackAttemptedLogin(ctx, user); err2 != nil {
			return goerrors.Wrap(err2, goerrors.CategoryInternal, "failed to track login attempt")
		}

		return ErrMismatchedHashAndPassword
	}

	if err := s.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Error("failed to track successful login", "error", err)
	}

	return nil
}

func (s *BunCredentialStore) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	return s.repo.Roles().FindByName(ctx, name)
}

func (s *BunCredentialStore) CreateRole(ctx context.Context, name string) (*Role, error) {
	role := &Role{Name: name}

	created, err := s.repo.Roles().Create(ctx, role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRoleExists
		}
		return nil, err
	}

	return created, nil
}

// AssignRole grants roleName to the user, failing with ErrUnknownRole when
// the role does not exist. Granting a role the user already holds is a
// no-op success.
func (s *BunCredentialStore) AssignRole(ctx context.Context, user *User, roleName string) error {
	role, err := s.repo.Roles().FindByName(ctx, roleName)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrUnknownRole
		}
		return err
	}

	return s.repo.Roles().Assign(ctx, user.ID, role.ID)
}

func (s *BunCredentialStore) RolesOf(ctx context.Context, user *User) ([]string, error) {
	return s.repo.Roles().NamesForUser(ctx, user.ID)
}

// ListUsers streams users as the caller iterates. Breaking out of the loop
// closes the underlying cursor.
func (s *BunCredentialStore) ListUsers(ctx context.Context) iter.Seq2[*User, error] {
	return func(yield func(*User, error) bool) {
		rows, err := s.db.NewSelect().
			Model((*User)(nil)).
			Order("usr.username ASC").
			Rows(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			user := new(User)
			if err := s.db.ScanRow(ctx, rows, user); err != nil {
				yield(nil, err)
				return
			}
			if !yield(user, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryConflict {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
