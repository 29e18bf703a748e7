package identity

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig is the environment backed Config implementation. The signing
// key has no default on purpose: it is a pre-shared secret and must be
// provided by the deployment, never embedded in code.
type EnvConfig struct {
	SigningKey          string   `envconfig:"SIGNING_KEY" required:"true"`
	TokenExpirationDays int      `envconfig:"TOKEN_EXPIRATION_DAYS" default:"30"`
	Issuer              string   `envconfig:"ISSUER" default:"https://goliatone.io"`
	Audience            []string `envconfig:"AUDIENCE" default:"https://goliatone.io"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from IDENTITY_* environment variables.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := envconfig.Process("IDENTITY", cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to load identity configuration")
	}
	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetTokenExpiration() int {
	return c.TokenExpirationDays
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

func (c *EnvConfig) GetAudience() []string {
	return c.Audience
}
