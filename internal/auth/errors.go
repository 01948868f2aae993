// internal/auth/errors.go
package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a request could not be authorized
type Kind string

const (
	// MissingCredential means the request carried no Authorization header
	MissingCredential Kind = "missing_credential"
	// MalformedCredential means the Authorization header is not "Bearer <token>"
	MalformedCredential Kind = "malformed_credential"
	// InvalidTokenHeader means the token header names no signing key
	InvalidTokenHeader Kind = "invalid_token_header"
	// NoMatchingKey means no key in the issuer's key set has the token's kid
	NoMatchingKey Kind = "no_matching_key"
	// ClaimsInvalid means the audience or issuer claim is wrong
	ClaimsInvalid Kind = "claims_invalid"
	// TokenInvalid covers every other verification failure
	TokenInvalid Kind = "token_invalid"
	// PermissionsClaimMissing means the verified claims have no permissions entry
	PermissionsClaimMissing Kind = "permissions_claim_missing"
	// PermissionDenied means the required permission was not granted
	PermissionDenied Kind = "permission_denied"
	// KeySetUnavailable means the issuer's key set could not be retrieved
	KeySetUnavailable Kind = "key_set_unavailable"
)

// statusCodes maps every kind to the HTTP status it is rendered with
var statusCodes = map[Kind]int{
	MissingCredential:       http.StatusUnauthorized,
	MalformedCredential:     http.StatusUnauthorized,
	InvalidTokenHeader:      http.StatusUnauthorized,
	NoMatchingKey:           http.StatusUnauthorized,
	ClaimsInvalid:           http.StatusUnauthorized,
	TokenInvalid:            http.StatusBadRequest,
	PermissionsClaimMissing: http.StatusBadRequest,
	PermissionDenied:        http.StatusUnauthorized,
	KeySetUnavailable:       http.StatusServiceUnavailable,
}

// Error is an authorization failure carrying the status it should be rendered with
type Error struct {
	Kind        Kind
	Code        string
	Description string
	StatusCode  int
	Err         error
}

// NewError creates an Error of the given kind
func NewError(kind Kind, code, description string) *Error {
	status, ok := statusCodes[kind]
	if !ok {
		status = http.StatusUnauthorized
	}
	return &Error{
		Kind:        kind,
		Code:        code,
		Description: description,
		StatusCode:  status,
	}
}

// Wrap attaches the underlying cause
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so
// errors.Is(err, &auth.Error{Kind: auth.NoMatchingKey}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of an authorization error, or "" for any other error
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}
