// internal/auth/types.go
package auth

import (
	"fmt"
)

// PermissionsClaim is the claim listing the caller's granted permissions
const PermissionsClaim = "permissions"

// Claims is a decoded claim set. Values only ever come from a verified token.
type Claims map[string]any

// Subject returns the "sub" claim
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// Permissions returns the permission strings of the claim set.
// ok is false when the claim is absent; a present claim of the wrong shape is an error.
func (c Claims) Permissions() (perms []string, ok bool, err error) {
	raw, ok := c[PermissionsClaim]
	if !ok {
		return nil, false, nil
	}

	switch v := raw.(type) {
	case []string:
		return v, true, nil
	case []any:
		perms = make([]string, 0, len(v))
		for i, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, true, fmt.Errorf("permission at position %d is %T, not a string", i, item)
			}
			perms = append(perms, s)
		}
		return perms, true, nil
	case nil:
		return nil, true, fmt.Errorf("permissions claim is null")
	default:
		return nil, true, fmt.Errorf("permissions claim is %T, not a list", raw)
	}
}
