package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgErr(code string) error {
	// Wrapped the way repository call sites wrap before mapping.
	return fmt.Errorf("query failed: %w", &pgconn.PgError{Code: code})
}

func TestMapPgErrorConstraintViolations(t *testing.T) {
	for _, code := range []string{pgerrcode.UniqueViolation, pgerrcode.ExclusionViolation} {
		t.Run(code, func(t *testing.T) {
			mapped := mapPgError(pgErr(code))

			var confErr *ConflictError
			require.ErrorAs(t, mapped, &confErr)
			assert.Equal(t, LabelOverlaps, confErr.Label)
		})
	}
}

func TestMapPgErrorCheckViolation(t *testing.T) {
	mapped := mapPgError(pgErr(pgerrcode.CheckViolation))

	var valErr *ValidationError
	require.ErrorAs(t, mapped, &valErr)
	assert.Equal(t, ValidationInvalidOrder, valErr.Kind)
}

func TestMapPgErrorTransientFailures(t *testing.T) {
	codes := []string{
		pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.QueryCanceled,
	}
	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			assert.ErrorIs(t, mapPgError(pgErr(code)), ErrTransientStore)
		})
	}

	t.Run("context deadline", func(t *testing.T) {
		err := fmt.Errorf("query failed: %w", context.DeadlineExceeded)
		assert.ErrorIs(t, mapPgError(err), ErrTransientStore)
	})
}

func TestMapPgErrorPassesThroughUnknownErrors(t *testing.T) {
	unknown := errors.New("connection reset")
	assert.Same(t, unknown, mapPgError(unknown))

	// Unrecognized pg codes stay untouched too.
	wrapped := pgErr(pgerrcode.NotNullViolation)
	assert.Equal(t, wrapped, mapPgError(wrapped))
}
