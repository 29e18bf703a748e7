package identity

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the JSON authentication endpoints.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.
		Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("sign-out.post")

	app.
		Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")
}

type AuthControllerRoutes struct {
	Login    string
	Logout   string
	Register string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Auther       *Auther
	Registerer   *Registerer
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.Registerer == nil {
		panic("Missing Registerer in auth controller...")
	}

	return c
}

// WithControllerAuther sets the authenticator used by the controller.
func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

// WithControllerRegisterer sets the registration flow used by the controller.
func WithControllerRegisterer(registerer *Registerer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Registerer = registerer
		return c
	}
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerDebug enables request payload dumps.
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// GetUsername returns the username
func (r LoginRequest) GetUsername() string {
	return r.Username
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

var _ LoginPayload = LoginRequest{}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed login payload"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= IDENTITY LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	token, err := a.Auther.Login(ctx.Context(), payload.GetUsername(), payload.GetPassword())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"token": token,
	})
}

// LogoutPost exists for client symmetry only: bearer tokens are stateless,
// so there is no server session to invalidate.
func (a *AuthController) LogoutPost(ctx router.Context) error {
	if err := a.Auther.Logout(ctx.Context()); err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.NoContent(router.StatusNoContent)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegisterUserMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed registration payload"))
	}

	if a.Debug {
		fmt.Println("======= IDENTITY REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("================================")
	}

	user, err := a.Registerer.Register(ctx.Context(), *payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, user)
}

func defaultErrHandler(ctx router.Context, err error) error {
	status := router.StatusInternalServerError
	message := "internal error"

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.Code > 0 {
			status = int(rich.Code)
		}
		message = rich.Message
		return ctx.JSON(status, map[string]any{
			"error":     message,
			"text_code": rich.TextCode,
		})
	}

	return ctx.JSON(status, map[string]any{
		"error": message,
	})
}
