package jwks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Discover resolves the key set URL advertised in the issuer's OpenID configuration.
// issuer must match the configuration's "issuer" exactly, trailing slash included.
func Discover(ctx context.Context, issuer string, client *http.Client) (string, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("failed to discover issuer %s: %w", issuer, err)
	}

	var meta struct {
		JWKSURL string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return "", fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if meta.JWKSURL == "" {
		return "", fmt.Errorf("issuer %s does not advertise a jwks_uri", issuer)
	}
	return meta.JWKSURL, nil
}
