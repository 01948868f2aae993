// internal/auth/verifier/verifier.go
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coffeeshop/internal/auth"
	"coffeeshop/internal/auth/jwks"
	"coffeeshop/internal/observability/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Config holds token verification configuration
type Config struct {
	// Issuer is the exact "iss" value accepted, e.g. "https://tenant.auth0.com/"
	Issuer string

	// Audience is the "aud" value tokens must contain
	Audience string

	// Algorithms is the allow-list of signing algorithms
	Algorithms []string

	// Leeway is the clock skew tolerated on time based claims
	Leeway time.Duration
}

// Verifier checks bearer tokens against the issuer's published signing keys
type Verifier struct {
	config   Config
	keys     jwks.Source
	parser   *jwt.Parser
	unsigned *jwt.Parser
	logger   *logging.Logger
}

// New creates a Verifier. keys is consulted on every call to Verify.
func New(config Config, keys jwks.Source, logger *logging.Logger) (*Verifier, error) {
	if config.Issuer == "" {
		return nil, fmt.Errorf("token verification requires an issuer")
	}
	if config.Audience == "" {
		return nil, fmt.Errorf("token verification requires an audience")
	}
	if len(config.Algorithms) == 0 {
		return nil, fmt.Errorf("token verification requires at least one algorithm")
	}
	if keys == nil {
		return nil, fmt.Errorf("token verification requires a key source")
	}

	return &Verifier{
		config: config,
		keys:   keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods(config.Algorithms),
			jwt.WithAudience(config.Audience),
			jwt.WithIssuer(config.Issuer),
			jwt.WithLeeway(config.Leeway),
		),
		unsigned: jwt.NewParser(),
		logger:   logger.WithModule("auth.verifier"),
	}, nil
}

// Verify checks the token's signature and claims and returns its payload.
// Every failure is an *auth.Error.
func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	logger := logging.FromContextOr(ctx, v.logger)

	kid, err := v.keyID(token)
	if err != nil {
		logger.Debug("Rejected token header", logging.Err(err))
		return nil, err
	}

	key, err := v.signingKey(ctx, kid)
	if err != nil {
		logger.Debug("No usable signing key", "kid", kid, logging.Err(err))
		return nil, err
	}

	claims := jwt.MapClaims{}
	_, err = v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		authErr := classify(err)
		logger.Debug("Token verification failed", "kid", kid, "kind", authErr.Kind, logging.Err(err))
		return nil, authErr
	}

	logger.Debug("Token verified", "kid", kid, "subject", claims["sub"])
	return auth.Claims(claims), nil
}

// keyID reads the kid from the token header without verifying anything
func (v *Verifier) keyID(token string) (string, error) {
	parsed, _, err := v.unsigned.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", auth.NewError(auth.TokenInvalid,
			"invalid_token", "Unable to parse authentication token").Wrap(err)
	}

	kid, _ := parsed.Header["kid"].(string)
	if kid == "" {
		return "", auth.NewError(auth.InvalidTokenHeader,
			"invalid_header", "Authorization malformed, token header has no key id")
	}
	return kid, nil
}

// signingKey returns the public key of the first published key whose kid matches.
// Sources that cache are refreshed once before giving up.
func (v *Verifier) signingKey(ctx context.Context, kid string) (interface{}, error) {
	set, err := v.keys.KeySet(ctx)
	if err != nil {
		return nil, auth.NewError(auth.KeySetUnavailable,
			"key_set_unavailable", "Unable to retrieve the issuer's signing keys").Wrap(err)
	}

	key, ok := firstMatch(set, kid)
	if !ok {
		if refresher, canRefresh := v.keys.(jwks.Refresher); canRefresh {
			set, err = refresher.Refresh(ctx)
			if err != nil {
				return nil, auth.NewError(auth.KeySetUnavailable,
					"key_set_unavailable", "Unable to retrieve the issuer's signing keys").Wrap(err)
			}
			key, ok = firstMatch(set, kid)
		}
	}
	if !ok {
		return nil, auth.NewError(auth.NoMatchingKey,
			"invalid_header", fmt.Sprintf("Unable to find a signing key with id %q", kid))
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, auth.NewError(auth.TokenInvalid,
			"invalid_key", "Signing key cannot be used for verification").Wrap(err)
	}
	return raw, nil
}

// firstMatch scans the set in order and returns the first key with kid
func firstMatch(set jwk.Set, kid string) (jwk.Key, bool) {
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if ok && key.KeyID() == kid {
			return key, true
		}
	}
	return nil, false
}

// classify maps a parse failure onto the error taxonomy.
// Time based failures are checked first so an expired token is never reported as a claims problem.
func classify(err error) *auth.Error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.NewError(auth.TokenInvalid, "token_expired", "Token expired").Wrap(err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return auth.NewError(auth.TokenInvalid, "token_not_valid_yet", "Token is not valid yet").Wrap(err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return auth.NewError(auth.ClaimsInvalid,
			"invalid_claims", "Incorrect claims, please check the audience and issuer").Wrap(err)
	default:
		return auth.NewError(auth.TokenInvalid,
			"invalid_token", "Unable to parse authentication token").Wrap(err)
	}
}
