package services

import (
	"errors"
	"fmt"

	"teamup/internal/domain"
)

var errorKinds = []error{
	domain.ErrUnauthorized,
	domain.ErrInvalidInput,
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrConflict,
	domain.ErrInfrastructure,
}

// wrap returns domain errors unchanged and prefixes anything else with op.
func wrap(op string, err error) error {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
