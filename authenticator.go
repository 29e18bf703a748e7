package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LoginState identifies where in the attempt sequence a login sits. The
// sequence is fixed: lookup, enabled check, verification. That ordering keeps
// the three rejection reasons mutually exclusive and deterministic for a
// given account state.
type LoginState string

const (
	LoginStateUnauthenticated LoginState = "unauthenticated"
	LoginStateLookup          LoginState = "lookup"
	LoginStateVerifying       LoginState = "verifying"
	LoginStateAuthenticated   LoginState = "authenticated"
	LoginStateRejected        LoginState = "rejected"
)

// Auther drives credential verification and token issuance against a
// CredentialStore. It keeps no state between calls.
type Auther struct {
	store        CredentialStore
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator backed by the given store.
func NewAuthenticator(store CredentialStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token service used for issuance.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login validates a login attempt and returns a signed bearer token.
// Failures surface exactly one of three classified reasons:
// ErrInvalidLoginAttempt (no such account), ErrUserDisabled (account exists
// but is disabled, checked before the password so disabled accounts never
// leak credential validity), or ErrLoginFailed (store rejected the
// credentials, including any lockout policy the store enforces).
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			s.emitLoginFailure(ctx, ActorRef{Type: "unknown"}, "", username, LoginStateLookup, ErrInvalidLoginAttempt)
			return "", ErrInvalidLoginAttempt
		}
		s.logger.Error("Login user lookup error", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	actor := ActorRef{ID: user.ID.String(), Type: "user"}

	if !user.Enabled {
		s.emitLoginFailure(ctx, actor, user.ID.String(), username, LoginStateLookup, ErrUserDisabled)
		return "", ErrUserDisabled
	}

	if err := s.store.VerifyPassword(ctx, username, password); err != nil {
		s.logger.Warn("Login credential verification rejected", "username", username, "error", err)
		s.emitLoginFailure(ctx, actor, user.ID.String(), username, LoginStateVerifying, ErrLoginFailed)
		return "", ErrLoginFailed
	}

	roles, err := s.store.RolesOf(ctx, user)
	if err != nil {
		s.logger.Error("Login failed to fetch roles", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch user roles")
	}

	token, err := s.tokenService.IssueToken(NewIdentityFromUser(user, roles))
	if err != nil {
		s.logger.Error("Login token issuance error", "error", err)
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, actor, user.ID.String(), map[string]any{
		"username": username,
		"state":    LoginStateAuthenticated,
	})

	return token, nil
}

// Logout is a no-op on the server: tokens are stateless bearer artifacts and
// there is no session to invalidate. Clients discard their token.
func (s *Auther) Logout(ctx context.Context) error {
	return nil
}

// SessionFromToken validates a raw token and returns its claims.
func (s *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

func (s *Auther) emitLoginFailure(ctx context.Context, actor ActorRef, userID, username string, state LoginState, cause error) {
	s.emitAuthEvent(ctx, ActivityEventLoginFailure, actor, userID, map[string]any{
		"username": username,
		"state":    state,
		"error":    cause.Error(),
	})
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

var _ Authenticator = (*Auther)(nil)
