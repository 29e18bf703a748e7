package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBootstrapInitializeEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := new(MockCredentialStore)
	sink := &capturingSink{}

	adminRole := &identity.Role{ID: uuid.New(), Name: identity.RoleAdministrator}
	userRole := &identity.Role{ID: uuid.New(), Name: identity.RoleUser}

	var adminAccount *identity.User

	// Administrator branch: absent role, created, account seeded.
	store.On("FindRoleByName", ctx, identity.RoleAdministrator).Return(nil, notFoundErr()).Once()
	store.On("CreateRole", ctx, identity.RoleAdministrator).Return(adminRole, nil).Once()
	store.On("CreateUser", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Username == "admin" && u.Enabled && u.EmailConfirmed
	}), "Admin_123").Run(func(args mock.Arguments) {
		adminAccount = args.Get(1).(*identity.User)
	}).Return(&identity.User{ID: uuid.New(), Username: "admin"}, nil).Once()
	store.On("AssignRole", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Username == "admin"
	}), identity.RoleAdministrator).Return(nil).Once()

	// User branch: absent role, created, account seeded.
	store.On("FindRoleByName", ctx, identity.RoleUser).Return(nil, notFoundErr()).Once()
	store.On("CreateRole", ctx, identity.RoleUser).Return(userRole, nil).Once()
	store.On("CreateUser", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Username == "user"
	}), "User_123").Return(&identity.User{ID: uuid.New(), Username: "user"}, nil).Once()
	store.On("AssignRole", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Username == "user"
	}), identity.RoleUser).Return(nil).Once()

	// Cross-grant: admin always also holds the baseline role.
	seededAdmin := &identity.User{ID: uuid.New(), Username: "admin"}
	store.On("FindUserByUsername", ctx, "admin").Return(seededAdmin, nil).Once()
	store.On("AssignRole", ctx, seededAdmin, identity.RoleUser).Return(nil).Once()

	bootstrap := identity.NewBootstrap(store, identity.WithBootstrapActivitySink(sink))

	err := bootstrap.Initialize(ctx)
	require.NoError(t, err)

	store.AssertExpectations(t)
	require.NotNil(t, adminAccount)
	assert.Equal(t, "admin@example.com", adminAccount.Email)
	assert.Equal(t, time.Date(1988, time.May, 19, 0, 0, 0, 0, time.UTC), adminAccount.DateOfBirth)

	var types []identity.ActivityEventType
	for _, evt := range sink.events {
		types = append(types, evt.EventType)
	}
	assert.Contains(t, types, identity.ActivityEventRoleSeeded)
	assert.Contains(t, types, identity.ActivityEventAccountSeeded)
	assert.Contains(t, types, identity.ActivityEventBootstrapFinish)
}

func TestBootstrapInitializeIdempotent(t *testing.T) {
	ctx := context.Background()
	store := new(MockCredentialStore)

	adminRole := &identity.Role{ID: uuid.New(), Name: identity.RoleAdministrator}
	userRole := &identity.Role{ID: uuid.New(), Name: identity.RoleUser}
	admin := &identity.User{ID: uuid.New(), Username: "admin"}

	// Both roles already exist, so no role and no account is ever created.
	store.On("FindRoleByName", ctx, identity.RoleAdministrator).Return(adminRole, nil).Twice()
	store.On("FindRoleByName", ctx, identity.RoleUser).Return(userRole, nil).Twice()
	store.On("FindUserByUsername", ctx, "admin").Return(admin, nil).Twice()
	store.On("AssignRole", ctx, admin, identity.RoleUser).Return(nil).Twice()

	bootstrap := identity.NewBootstrap(store)

	require.NoError(t, bootstrap.Initialize(ctx))
	require.NoError(t, bootstrap.Initialize(ctx))

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "CreateRole", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestBootstrapSwallowsCreationRaces(t *testing.T) {
	ctx := context.Background()
	store := new(MockCredentialStore)

	userRole := &identity.Role{ID: uuid.New(), Name: identity.RoleUser}
	admin := &identity.User{ID: uuid.New(), Username: "admin"}

	// Another instance created the Administrator role between our lookup and
	// our create; the rejection is swallowed and no account is seeded.
	store.On("FindRoleByName", ctx, identity.RoleAdministrator).Return(nil, notFoundErr()).Once()
	store.On("CreateRole", ctx, identity.RoleAdministrator).Return(nil, identity.ErrRoleExists).Once()

	store.On("FindRoleByName", ctx, identity.RoleUser).Return(userRole, nil).Once()
	store.On("FindUserByUsername", ctx, "admin").Return(admin, nil).Once()
	store.On("AssignRole", ctx, admin, identity.RoleUser).Return(nil).Once()

	bootstrap := identity.NewBootstrap(store, identity.WithBootstrapLogger(quietLogger{}))

	require.NoError(t, bootstrap.Initialize(ctx))

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestBootstrapAccountCreationFailureDoesNotFailRun(t *testing.T) {
	ctx := context.Background()
	store := new(MockCredentialStore)

	adminRole := &identity.Role{ID: uuid.New(), Name: identity.RoleAdministrator}
	userRole := &identity.Role{ID: uuid.New(), Name: identity.RoleUser}

	// Role creation succeeds but the default account is rejected. The role
	// exists from now on, so the branch will not retry on later runs.
	store.On("FindRoleByName", ctx, identity.RoleAdministrator).Return(nil, notFoundErr()).Once()
	store.On("CreateRole", ctx, identity.RoleAdministrator).Return(adminRole, nil).Once()
	store.On("CreateUser", ctx, mock.Anything, "Admin_123").
		Return(nil, identity.ErrDuplicateIdentity).Once()

	store.On("FindRoleByName", ctx, identity.RoleUser).Return(userRole, nil).Once()
	store.On("FindUserByUsername", ctx, "admin").Return(nil, notFoundErr()).Once()

	bootstrap := identity.NewBootstrap(store, identity.WithBootstrapLogger(quietLogger{}))

	require.NoError(t, bootstrap.Initialize(ctx))
	store.AssertExpectations(t)
}

func TestBootstrapRoleLookupFailureShortCircuitsBranch(t *testing.T) {
	ctx := context.Background()
	store := new(MockCredentialStore)

	userRole := &identity.Role{ID: uuid.New(), Name: identity.RoleUser}
	admin := &identity.User{ID: uuid.New(), Username: "admin"}
	storeDown := errors.New("store unavailable")

	store.On("FindRoleByName", ctx, identity.RoleAdministrator).Return(nil, storeDown).Once()

	// The failing branch does not stop the remaining branches.
	store.On("FindRoleByName", ctx, identity.RoleUser).Return(userRole, nil).Once()
	store.On("FindUserByUsername", ctx, "admin").Return(admin, nil).Once()
	store.On("AssignRole", ctx, admin, identity.RoleUser).Return(nil).Once()

	bootstrap := identity.NewBootstrap(store, identity.WithBootstrapLogger(quietLogger{}))

	err := bootstrap.Initialize(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "role lookup failed")

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "CreateRole", mock.Anything, mock.Anything)
}

func TestBootstrapSeedOverrides(t *testing.T) {
	ctx := context.Background()
	store := new(MockCredentialStore)

	adminRole := &identity.Role{ID: uuid.New(), Name: identity.RoleAdministrator}
	userRole := &identity.Role{ID: uuid.New(), Name: identity.RoleUser}
	root := &identity.User{ID: uuid.New(), Username: "root"}

	store.On("FindRoleByName", ctx, identity.RoleAdministrator).Return(nil, notFoundErr()).Once()
	store.On("CreateRole", ctx, identity.RoleAdministrator).Return(adminRole, nil).Once()
	store.On("CreateUser", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Username == "root" && u.Email == "root@corp.test"
	}), "s3cret-Pw").Return(root, nil).Once()
	store.On("AssignRole", ctx, root, identity.RoleAdministrator).Return(nil).Once()

	store.On("FindRoleByName", ctx, identity.RoleUser).Return(userRole, nil).Once()

	// the cross-grant follows the overridden admin username
	store.On("FindUserByUsername", ctx, "root").Return(root, nil).Once()
	store.On("AssignRole", ctx, root, identity.RoleUser).Return(nil).Once()

	bootstrap := identity.NewBootstrap(store, identity.WithSeedAccount(identity.RoleAdministrator, identity.SeedAccount{
		Username:    "root",
		Email:       "root@corp.test",
		Password:    "s3cret-Pw",
		DateOfBirth: time.Date(1980, time.January, 2, 0, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, bootstrap.Initialize(ctx))
	store.AssertExpectations(t)
}
