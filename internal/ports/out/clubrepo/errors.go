package clubrepo

import "errors"

// ErrNotFound indicates the requested club does not exist.
var ErrNotFound = errors.New("club not found")
