package types

import "errors"

var (
	// ErrInvalidKey is returned when a referenced key is not declared on
	// the target class.
	ErrInvalidKey = errors.New("invalid key")

	// ErrMissingConfiguration is returned when a required argument is
	// omitted or malformed, e.g. an empty select list.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrForbiddenOperation is returned when a constraint kind without a
	// matching SQL fragment generator reaches the compiler.
	ErrForbiddenOperation = errors.New("forbidden operation")

	// ErrValidation is returned when skip or limit is not a non-negative
	// number.
	ErrValidation = errors.New("validation error")
)
