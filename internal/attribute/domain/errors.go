package domain

import "errors"

var (
	ErrInvalidKey = errors.New("attribute key is required")
)
