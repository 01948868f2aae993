// internal/auth/bearer/extractor.go
package bearer

import (
	"net/http"
	"strings"

	"coffeeshop/internal/auth"
)

// scheme is the only accepted authorization scheme, compared case-insensitively
const scheme = "bearer"

// FromRequest returns the bearer credential carried by the request's Authorization header
func FromRequest(r *http.Request) (string, error) {
	return FromHeader(r.Header.Get("Authorization"))
}

// FromHeader validates an Authorization header value and returns its credential.
// The value must split on whitespace into exactly "<scheme> <credential>".
func FromHeader(header string) (string, error) {
	if header == "" {
		return "", auth.NewError(auth.MissingCredential,
			"authorization_header_missing", "Authorization header is expected")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", auth.NewError(auth.MalformedCredential,
			"invalid_header", "Authorization header must be of the form 'Bearer <token>'")
	}

	if !strings.EqualFold(parts[0], scheme) {
		return "", auth.NewError(auth.MalformedCredential,
			"invalid_header", "Authorization header must start with 'Bearer'")
	}

	return parts[1], nil
}
