package authz

import (
	"testing"

	"coffeeshop/internal/auth"
)

func TestClaimsEnforcer(t *testing.T) {
	tests := []struct {
		name       string
		permission string
		claims     auth.Claims
		wantKind   auth.Kind
	}{
		{
			name:       "granted",
			permission: "post:drinks",
			claims:     auth.Claims{"permissions": []any{"get:drinks-detail", "post:drinks"}},
		},
		{
			name:       "granted from string slice",
			permission: "delete:drinks",
			claims:     auth.Claims{"permissions": []string{"delete:drinks"}},
		},
		{
			name:       "not granted",
			permission: "delete:drinks",
			claims:     auth.Claims{"permissions": []any{"get:drinks-detail"}},
			wantKind:   auth.PermissionDenied,
		},
		{
			name:       "empty list",
			permission: "get:drinks-detail",
			claims:     auth.Claims{"permissions": []any{}},
			wantKind:   auth.PermissionDenied,
		},
		{
			name:       "exact match only",
			permission: "post:drinks",
			claims:     auth.Claims{"permissions": []any{"POST:drinks", "post:drinks-detail"}},
			wantKind:   auth.PermissionDenied,
		},
		{
			name:       "claim missing",
			permission: "post:drinks",
			claims:     auth.Claims{"sub": "auth0|barista"},
			wantKind:   auth.PermissionsClaimMissing,
		},
		{
			name:       "claim is null",
			permission: "post:drinks",
			claims:     auth.Claims{"permissions": nil},
			wantKind:   auth.PermissionsClaimMissing,
		},
		{
			name:       "claim is not a list",
			permission: "post:drinks",
			claims:     auth.Claims{"permissions": "post:drinks"},
			wantKind:   auth.PermissionsClaimMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClaimsEnforcer{}.Enforce(tt.permission, tt.claims)
			if got := auth.KindOf(err); got != tt.wantKind {
				t.Errorf("Enforce() kind = %q, want %q (err %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestClaimsEnforcer_StatusCodes(t *testing.T) {
	err := ClaimsEnforcer{}.Enforce("post:drinks", auth.Claims{})
	if got := err.(*auth.Error).StatusCode; got != 400 {
		t.Errorf("missing claim status = %d, want 400", got)
	}

	err = ClaimsEnforcer{}.Enforce("post:drinks", auth.Claims{"permissions": []any{}})
	if got := err.(*auth.Error).StatusCode; got != 401 {
		t.Errorf("denied status = %d, want 401", got)
	}
}
