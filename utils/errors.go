// utils/errors.go
package utils

import "errors"

// ErrIdentityNotFound is returned when no authenticated identity is present
// in the request context.
var ErrIdentityNotFound = errors.New("authentication required: identity not found")
