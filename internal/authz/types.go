// internal/authz/types.go
package authz

import (
	"context"
	"net/http"

	"coffeeshop/internal/auth"
)

// Verifier turns a bearer token into verified claims
type Verifier interface {
	// Verify returns the token's payload or an *auth.Error
	Verify(ctx context.Context, token string) (auth.Claims, error)
}

// Enforcer decides whether verified claims grant a permission
type Enforcer interface {
	// Enforce returns nil when permission is granted, otherwise an *auth.Error
	Enforce(permission string, claims auth.Claims) error
}

// ProtectedFunc is a handler that runs only after authorization succeeded.
// claims is the verified token payload.
type ProtectedFunc func(claims auth.Claims, w http.ResponseWriter, r *http.Request)
