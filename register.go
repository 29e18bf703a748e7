package identity

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is used to parse phone numbers given without a country prefix.
const defaultPhoneRegion = "US"

// RegisterUserMessage carries the registration fields.
type RegisterUserMessage struct {
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Phone       string    `json:"phone,omitempty"`
}

func (m RegisterUserMessage) Type() string { return "identity.user.register" }

// Validate will run validation rules
func (m RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&m.Phone, validation.By(validatePhone)),
	)
}

func validatePhone(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return err
	}

	if !phonenumbers.IsValidNumber(num) {
		return goerrors.New("invalid phone number", goerrors.CategoryValidation)
	}

	return nil
}

// Registerer creates user records and assigns the baseline role.
type Registerer struct {
	store        CredentialStore
	logger       Logger
	activitySink ActivitySink
}

// NewRegisterer returns a Registerer backed by the given store.
func NewRegisterer(store CredentialStore) *Registerer {
	return &Registerer{
		store:        store,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (r *Registerer) WithLogger(logger Logger) *Registerer {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithActivitySink configures an ActivitySink for registration events.
func (r *Registerer) WithActivitySink(sink ActivitySink) *Registerer {
	r.activitySink = normalizeActivitySink(sink)
	return r
}

// Register creates the user with Enabled and EmailConfirmed set, submits the
// password to the store for hashing, then assigns the "User" role.
//
// Creation and role assignment are two sequential store operations with no
// rollback between them: if assignment fails the user exists without the
// baseline role. Callers must treat that as a recoverable inconsistency, not
// retry registration. Username/email uniqueness is enforced entirely by the
// store and surfaces as ErrDuplicateIdentity.
func (r *Registerer) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	user := &User{
		Username:       msg.Username,
		Email:          msg.Email,
		Enabled:        true,
		EmailConfirmed: true,
		DateOfBirth:    msg.DateOfBirth,
		Phone:          msg.Phone,
	}

	created, err := r.store.CreateUser(ctx, user, msg.Password)
	if err != nil {
		if IsDuplicateIdentity(err) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	if err := r.store.AssignRole(ctx, created, RoleUser); err != nil {
		r.logger.Warn("user created without baseline role", "username", created.Username, "error", err)
	}

	r.emitEvent(ctx, created)

	return created, nil
}

func (r *Registerer) emitEvent(ctx context.Context, user *User) {
	sink := normalizeActivitySink(r.activitySink)
	event := ActivityEvent{
		EventType:  ActivityEventUserRegistered,
		Actor:      ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:     user.ID.String(),
		Metadata:   map[string]any{"username": user.Username},
		OccurredAt: time.Now(),
	}

	if err := sink.Record(ctx, event); err != nil {
		r.logger.Warn("registration activity sink error: %v", err)
	}
}
