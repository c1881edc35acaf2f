package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/pharmalytics/pharmalytics/internal/shared"
)

func TestMapErrorTranslatesIntegrityCodes(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	require.ErrorIs(t, mapError(unique), shared.ErrConstraint)

	foreign := &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	require.ErrorIs(t, mapError(foreign), shared.ErrConstraint)

	check := &pgconn.PgError{Code: "23514", Message: "violates check constraint"}
	require.ErrorIs(t, mapError(check), shared.ErrConstraint)
}

func TestMapErrorLeavesOtherErrorsAlone(t *testing.T) {
	syntaxErr := &pgconn.PgError{Code: "42601", Message: "syntax error"}
	require.NotErrorIs(t, mapError(syntaxErr), shared.ErrConstraint)

	plain := errors.New("connection refused")
	require.Equal(t, plain, mapError(plain))
}

func TestRepositoryGuardsNilPool(t *testing.T) {
	var repo *Repository
	err := repo.withTx(context.Background(), nil)
	require.Error(t, err)

	empty := &Repository{}
	err = empty.withTx(context.Background(), nil)
	require.Error(t, err)
}
