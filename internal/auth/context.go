// internal/auth/context.go
package auth

import (
	"context"
)

// ContextKey is a type-safe key for context values
type ContextKey string

// ClaimsContextKey is the key used to store verified claims in the context
const ClaimsContextKey ContextKey = "auth:claims"

// ClaimsFromContext extracts the verified claims from the request context
func ClaimsFromContext(ctx context.Context) Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(Claims); ok {
		return claims
	}
	return nil
}

// ContextWithClaims adds verified claims to a context
func ContextWithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}
