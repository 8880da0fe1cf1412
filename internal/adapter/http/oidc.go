package adapthttp

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the SSO provider used by the /sso routes.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// NewOIDCConfig discovers the issuer and builds the OAuth2 client config.
func NewOIDCConfig(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*OIDCConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", issuer, err)
	}
	return &OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}
