package authz

import (
	"coffeeshop/internal/auth"

	"golang.org/x/exp/slices"
)

// ClaimsEnforcer checks permissions against the token's permissions claim
type ClaimsEnforcer struct{}

// Enforce requires permission to be an exact member of the permissions claim.
// A missing claim and a claim of the wrong shape are both reported as PermissionsClaimMissing.
func (ClaimsEnforcer) Enforce(permission string, claims auth.Claims) error {
	perms, ok, err := claims.Permissions()
	if !ok || err != nil {
		e := auth.NewError(auth.PermissionsClaimMissing,
			"invalid_claims", "Permissions not included in JWT")
		if err != nil {
			e = e.Wrap(err)
		}
		return e
	}

	if !slices.Contains(perms, permission) {
		return auth.NewError(auth.PermissionDenied,
			"unauthorized", "Permission not found")
	}
	return nil
}
