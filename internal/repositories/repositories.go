// Package repositories contains the MySQL data access layer.
package repositories

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")
