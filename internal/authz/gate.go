// internal/authz/gate.go
package authz

import (
	"errors"
	"net/http"

	"coffeeshop/internal/auth"
	"coffeeshop/internal/auth/bearer"
	"coffeeshop/internal/httputils"
	"coffeeshop/internal/observability/logging"
	"coffeeshop/internal/observability/metrics"
)

// FailureMessage is the body message of every authorization failure.
// The failure kind is only logged.
const FailureMessage = "Authentication Failed check Username, Password and JWT token"

// Gate guards handlers behind a bearer token carrying a required permission
type Gate struct {
	verifier Verifier
	enforcer Enforcer
	logger   *logging.Logger
	metrics  *metrics.Collector
}

// NewGate creates a Gate. A nil enforcer checks the permissions claim.
func NewGate(verifier Verifier, enforcer Enforcer, logger *logging.Logger, metrics *metrics.Collector) *Gate {
	if enforcer == nil {
		enforcer = ClaimsEnforcer{}
	}
	return &Gate{
		verifier: verifier,
		enforcer: enforcer,
		logger:   logger.WithModule("authz.gate"),
		metrics:  metrics,
	}
}

// Require returns a handler that extracts and verifies the bearer token,
// enforces permission and then calls next with the verified claims.
// next is never invoked when any step fails.
func (g *Gate) Require(permission string, next ProtectedFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := g.authorize(permission, w, r)
		if !ok {
			return
		}
		next(claims, w, r)
	})
}

// Middleware is Require for plain handlers. The claims are stored in the
// request context, see auth.ClaimsFromContext.
func (g *Gate) Middleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.Require(permission, func(claims auth.Claims, w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}

func (g *Gate) authorize(permission string, w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	ctx := r.Context()
	logger := logging.FromContextOr(ctx, g.logger).With("permission", permission)

	token, err := bearer.FromRequest(r)
	if err != nil {
		g.metrics.RecordAuthentication(string(auth.KindOf(err)))
		g.fail(w, r, logger, err)
		return nil, false
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		g.metrics.RecordAuthentication(string(auth.KindOf(err)))
		logger = logger.With("token_fingerprint", logging.Fingerprint(token))
		g.fail(w, r, logger, err)
		return nil, false
	}
	g.metrics.RecordAuthentication("success")

	if err := g.enforcer.Enforce(permission, claims); err != nil {
		g.metrics.RecordAuthorization(permission, false)
		g.fail(w, r, logger.With("subject", claims.Subject()), err)
		return nil, false
	}
	g.metrics.RecordAuthorization(permission, true)

	logger.Debug("Authorization successful", "subject", claims.Subject())
	return claims, true
}

// fail renders the generic failure envelope with the status of err
func (g *Gate) fail(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	status := http.StatusUnauthorized
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		status = authErr.StatusCode
		logger = logger.With("kind", authErr.Kind, "code", authErr.Code)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Authorization failed", "status", status, logging.Err(err))
	} else {
		logger.Info("Authorization failed", "status", status, logging.Err(err))
	}
	httputils.WriteError(w, r, status, FailureMessage)
}
