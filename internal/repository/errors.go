package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
// Services translate it into their own not-found errors.
var ErrNotFound = errors.New("record not found")

// ErrInvalidTable is returned when ClearTable is asked for a table outside the whitelist.
var ErrInvalidTable = errors.New("invalid table name")
