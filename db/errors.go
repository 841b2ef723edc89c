package db

import (
	"errors"
	"fmt"

	"github.com/uptrace/bun/driver/pgdriver"
)

// ErrIntegrity marks a write rejected by a foreign-key, unique or not-null
// constraint.
var ErrIntegrity = errors.New("integrity violation")

// classify wraps PostgreSQL integrity errors (SQLSTATE class 23) with
// ErrIntegrity and returns anything else unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	return err
}
