// Package repository defines error types returned by the stores.  Handlers
// use these sentinel values to pick the HTTP status they answer with.
package repository

import "errors"

// ErrEmptyTask is returned when a caller tries to append an empty text.
// Handlers translate this into an HTTP 422 response.
var ErrEmptyTask = errors.New("task text is empty")
