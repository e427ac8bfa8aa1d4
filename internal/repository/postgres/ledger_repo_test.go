package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"teamup/internal/domain"
)

func TestLedgerRepository_Append(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := &domain.LedgerEntry{
		ID: "led-1", MessageID: "msg-1", EventID: "ev-1", Kind: domain.LedgerKindJoined,
		UserID: "user-1", UserName: "Ann", Message: domain.MessageUserJoined, CreatedAt: ts,
	}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    bool
		wantErr bool
	}{
		{
			name: "new message inserted",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO ledger_entries .* ON CONFLICT \(message_id\) DO NOTHING`).
					WithArgs("led-1", "msg-1", "ev-1", "joined", "user-1", "Ann", domain.MessageUserJoined, ts).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: true,
		},
		{
			name: "redelivered message ignored",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO ledger_entries`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			want: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO ledger_entries`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewLedgerRepository(db).Append(ctx, entry)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedgerRepository_HasConcludedMarker(t *testing.T) {
	for _, want := range []bool{true, false} {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("ev-1", domain.LedgerKindConcluded, domain.ConcludedSuffix).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := NewLedgerRepository(db).HasConcludedMarker(context.Background(), "ev-1")
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestLedgerRepository_DeleteByEventID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM ledger_entries WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewLedgerRepository(db).DeleteByEventID(context.Background(), "ev-1")
	require.NoError(t, err)
	require.EqualValues(t, 4, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
