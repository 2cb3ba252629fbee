package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every client input error
	ErrValidation = errors.New("validation failed")

	ErrDuplicateSubdomain = fmt.Errorf("%w: subdomain already in use", ErrValidation)
	ErrInvalidLanguage    = fmt.Errorf("%w: invalid language key", ErrValidation)
	ErrIDMustBeNull       = fmt.Errorf("%w: id must be null on create", ErrValidation)
	ErrInvalidSettings    = fmt.Errorf("%w: invalid settings", ErrValidation)
	ErrInvalidSubdomain   = fmt.Errorf("%w: invalid subdomain", ErrValidation)
	ErrFieldTooLong       = fmt.Errorf("%w: value too long", ErrValidation)

	ErrAccessDenied   = errors.New("not authorized")
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrDataIntegrity marks stored data that violates an invariant the service relies on
	ErrDataIntegrity = errors.New("data integrity violation")
)
