package ui

import "errors"

// ErrInvalidConfig indicates the UI configuration failed validation.
var ErrInvalidConfig = errors.New("ui: invalid configuration")
