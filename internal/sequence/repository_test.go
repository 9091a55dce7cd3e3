package sequence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestNextSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	upsert := regexp.QuoteMeta(`INSERT INTO sequences`)
	mock.ExpectQuery(upsert).WithArgs("order-number:202608").
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(1)))
	mock.ExpectQuery(upsert).WithArgs("order-number:202608").
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(2)))
	mock.ExpectQuery(upsert).WithArgs("order-number:202609").
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(1)))

	repo := NewPostgresRepository(mock)
	ctx := context.Background()

	seq, err := repo.NextSequence(ctx, "order-number:202608")
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)

	seq, err = repo.NextSequence(ctx, "order-number:202608")
	require.NoError(t, err)
	require.Equal(t, int64(2), seq)

	seq, err = repo.NextSequence(ctx, "order-number:202609")
	require.NoError(t, err)
	require.Equal(t, int64(1), seq, "each partition counts independently")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequenceEmptyKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresRepository(mock).NextSequence(context.Background(), "")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "no query issued for an empty key")
}

func TestNextSequenceQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sequences`)).
		WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresRepository(mock).NextSequence(context.Background(), "events:order:o1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
