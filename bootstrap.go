package identity

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// SeedAccount describes the default account created alongside a seeded role.
type SeedAccount struct {
	Username    string
	Email       string
	Password    string
	DateOfBirth time.Time
}

// Bootstrap seeds the baseline roles and default accounts on process start.
type Bootstrap struct {
	store        CredentialStore
	logger       Logger
	activitySink ActivitySink
	seeds        map[string]SeedAccount
	adminName    string
}

// BootstrapOption customizes seeding behavior.
type BootstrapOption func(*Bootstrap)

// WithSeedAccount overrides the default account created for roleName.
func WithSeedAccount(roleName string, account SeedAccount) BootstrapOption {
	return func(b *Bootstrap) {
		b.seeds[roleName] = account
		if roleName == RoleAdministrator && account.Username != "" {
			b.adminName = account.Username
		}
	}
}

// WithBootstrapLogger overrides the logger.
func WithBootstrapLogger(logger Logger) BootstrapOption {
	return func(b *Bootstrap) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBootstrapActivitySink sets the sink used to publish seeding events.
func WithBootstrapActivitySink(sink ActivitySink) BootstrapOption {
	return func(b *Bootstrap) {
		b.activitySink = normalizeActivitySink(sink)
	}
}

// NewBootstrap returns a Bootstrap with the default seed accounts:
// "admin" for the Administrator role and "user" for the User role.
func NewBootstrap(store CredentialStore, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		store:        store,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		adminName:    "admin",
		seeds: map[string]SeedAccount{
			RoleAdministrator: {
				Username:    "admin",
				Email:       "admin@example.com",
				Password:    "Admin_123",
				DateOfBirth: time.Date(1988, time.May, 19, 0, 0, 0, 0, time.UTC),
			},
			RoleUser: {
				Username:    "user",
				Email:       "user@example.com",
				Password:    "User_123",
				DateOfBirth: time.Date(2005, time.October, 17, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// Initialize ensures the required roles and their default accounts exist.
// It is idempotent and safe under concurrent invocation: creation rejections
// (role or account already exists) are swallowed as expected steady-state
// outcomes. Only role-lookup failures short-circuit their branch; they are
// joined into the returned error after every branch has been attempted.
//
// If a role is created but its default account creation fails, the account is
// not retried on later runs because the role now exists. That trade-off is
// intentional; operators recover by creating the account manually.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	var lookupErrs []error

	for _, roleName := range RequiredRoles() {
		if err := b.ensureRole(ctx, roleName); err != nil {
			lookupErrs = append(lookupErrs, err)
		}
	}

	b.grantBaselineToAdmin(ctx)

	b.emitEvent(ctx, ActivityEventBootstrapFinish, "", map[string]any{
		"roles": RequiredRoles(),
	})

	return errors.Join(lookupErrs...)
}

func (b *Bootstrap) ensureRole(ctx context.Context, roleName string) error {
	_, err := b.store.FindRoleByName(ctx, roleName)
	if err == nil {
		// Role already present; never recreate its default account.
		return nil
	}

	if !goerrors.IsNotFound(err) {
		b.logger.Error("Bootstrap role lookup failed", "role", roleName, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "role lookup failed")
	}

	if _, err := b.store.CreateRole(ctx, roleName); err != nil {
		// Lost a creation race or the store rejected the role; either way the
		// branch ends here and the next run will see the role as existing.
		b.logger.Warn("Bootstrap role creation rejected", "role", roleName, "error", err)
		return nil
	}

	b.emitEvent(ctx, ActivityEventRoleSeeded, "", map[string]any{"role": roleName})

	b.seedAccount(ctx, roleName)

	return nil
}

func (b *Bootstrap) seedAccount(ctx context.Context, roleName string) {
	seed, ok := b.seeds[roleName]
	if !ok {
		return
	}

	account := &User{
		Username:       seed.Username,
		Email:          seed.Email,
		Enabled:        true,
		EmailConfirmed: true,
		DateOfBirth:    seed.DateOfBirth,
	}

	// Deterministic ids keep concurrent bootstraps from seeding the same
	// account under different identifiers.
	if id, err := hashid.NewUUID(seed.Email); err == nil {
		account.ID = id
	}

	created, err := b.store.CreateUser(ctx, account, seed.Password)
	if err != nil {
		b.logger.Warn("Bootstrap account creation rejected", "username", seed.Username, "error", err)
		return
	}

	if err := b.store.AssignRole(ctx, created, roleName); err != nil {
		b.logger.Warn("Bootstrap role assignment failed", "username", seed.Username, "role", roleName, "error", err)
		return
	}

	b.emitEvent(ctx, ActivityEventAccountSeeded, created.ID.String(), map[string]any{
		"username": seed.Username,
		"role":     roleName,
	})
}

// grantBaselineToAdmin makes sure the administrative account also satisfies
// baseline-user claims checks. AssignRole is idempotent, so repeating the
// grant on every start is harmless.
func (b *Bootstrap) grantBaselineToAdmin(ctx context.Context) {
	admin, err := b.store.FindUserByUsername(ctx, b.adminName)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			b.logger.Warn("Bootstrap admin lookup failed", "username", b.adminName, "error", err)
		}
		return
	}

	if err := b.store.AssignRole(ctx, admin, RoleUser); err != nil {
		b.logger.Warn("Bootstrap baseline grant failed", "username", b.adminName, "error", err)
	}
}

func (b *Bootstrap) emitEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(b.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{Type: "system"},
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := sink.Record(ctx, event); err != nil {
		b.logger.Warn("bootstrap activity sink error: %v", err)
	}
}
