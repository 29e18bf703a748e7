package identity_test

import (
	"context"
	"iter"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements identity.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindUserByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) CreateUser(ctx context.Context, user *identity.User, password string) (*identity.User, error) {
	args := m.Called(ctx, user, password)
	created, _ := args.Get(0).(*identity.User)
	return created, args.Error(1)
}

func (m *MockCredentialStore) VerifyPassword(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockCredentialStore) FindRoleByName(ctx context.Context, name string) (*identity.Role, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(*identity.Role)
	return role, args.Error(1)
}

func (m *MockCredentialStore) CreateRole(ctx context.Context, name string) (*identity.Role, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(*identity.Role)
	return role, args.Error(1)
}

func (m *MockCredentialStore) AssignRole(ctx context.Context, user *identity.User, roleName string) error {
	args := m.Called(ctx, user, roleName)
	return args.Error(0)
}

func (m *MockCredentialStore) RolesOf(ctx context.Context, user *identity.User) ([]string, error) {
	args := m.Called(ctx, user)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

func (m *MockCredentialStore) ListUsers(ctx context.Context) iter.Seq2[*identity.User, error] {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*identity.User)
	return usersSeq(users)
}

func usersSeq(users []*identity.User) iter.Seq2[*identity.User, error] {
	return func(yield func(*identity.User, error) bool) {
		for _, u := range users {
			if !yield(u, nil) {
				return
			}
		}
	}
}

// MockLogger implements identity.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// quietLogger discards everything; handy when a test provokes failures on purpose.
type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

// capturingSink records activity events for assertions.
type capturingSink struct {
	events []identity.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt identity.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}

type testConfig struct {
	signingKey string
	expiration int
	issuer     string
	audience   []string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		expiration: 30,
		issuer:     "https://issuer.test",
		audience:   []string{"https://audience.test"},
	}
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.expiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetAudience() []string   { return c.audience }
