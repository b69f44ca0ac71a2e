package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrQuery        = errors.New("query failed")
)

// Query marks a data-layer failure so handlers can classify it with errors.Is
// while keeping the driver message visible in logs.
func Query(err error) error {
	return fmt.Errorf("%w: %s", ErrQuery, err)
}
