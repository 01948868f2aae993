package bearer

import (
	"errors"
	"net/http/httptest"
	"testing"

	"coffeeshop/internal/auth"
)

func TestFromHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		want     string
		wantKind auth.Kind
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "mixed case scheme", header: "BeArEr token", want: "token"},
		{name: "extra whitespace", header: "  Bearer \t token  ", want: "token"},
		{name: "missing", header: "", wantKind: auth.MissingCredential},
		{name: "blank", header: "   ", wantKind: auth.MalformedCredential},
		{name: "scheme only", header: "Bearer", wantKind: auth.MalformedCredential},
		{name: "token only", header: "abc.def.ghi", wantKind: auth.MalformedCredential},
		{name: "three parts", header: "Bearer abc def", wantKind: auth.MalformedCredential},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantKind: auth.MalformedCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromHeader(tt.header)
			if tt.wantKind != "" {
				if kind := auth.KindOf(err); kind != tt.wantKind {
					t.Fatalf("FromHeader(%q) kind = %q, want %q (err %v)", tt.header, kind, tt.wantKind, err)
				}
				if got != "" {
					t.Errorf("expected no credential on failure, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromHeader(%q) error: %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("FromHeader(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestFromRequest_StatusCodes(t *testing.T) {
	r := httptest.NewRequest("GET", "/drinks-detail", nil)

	_, err := FromRequest(r)
	var authErr *auth.Error
	if !errors.As(err, &authErr) || authErr.StatusCode != 401 {
		t.Fatalf("expected 401 auth error for missing header, got %v", err)
	}

	r.Header.Set("Authorization", "Token abc")
	_, err = FromRequest(r)
	if !errors.As(err, &authErr) || authErr.StatusCode != 401 || authErr.Kind != auth.MalformedCredential {
		t.Fatalf("expected 401 malformed credential, got %v", err)
	}
}
