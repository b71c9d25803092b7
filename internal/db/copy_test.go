package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "doctors", []string{"id", "name"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"doctors"}, []string{"id", "name"}).WillReturnResult(2)

	rows := [][]any{{"d1", "Jane Smith"}, {"d2", "Somchai Prasert"}}
	n, err := CopyFrom(context.Background(), mock, "doctors", []string{"id", "name"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_InTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"testimonials"}, []string{"id"}).WillReturnResult(1)
	mock.ExpectCommit()

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	n, err := CopyFrom(context.Background(), tx, "testimonials", []string{"id"}, [][]any{{"t1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"procedure_pricing"}, []string{"id"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "procedure_pricing", []string{"id"}, [][]any{{"p1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO procedure_pricing")
	assert.NoError(t, mock.ExpectationsWereMet())
}
