package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/JCHEPO/kiu/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestParticipantRepository_Add(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO event_participants`).
					WithArgs("event-1", "user-1", 5).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "capacity reached inserts nothing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO event_participants`).
					WithArgs("event-1", "user-1", 5).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errIs:   domain.ErrEventFull,
		},
		{
			name: "unique violation returns ErrAlreadyJoined",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO event_participants`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrAlreadyJoined,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO event_participants`).
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
			repo := NewParticipantRepository(db)
			err = repo.Add(ctx, "event-1", "user-1", 5)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestParticipantRepository_ListUserIDs(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id"}).
		AddRow("user-1").
		AddRow("user-2")
	mock.ExpectQuery(`SELECT user_id FROM event_participants`).
		WithArgs("event-1").
		WillReturnRows(rows)

	repo := NewParticipantRepository(db)
	ids, err := repo.ListUserIDs(ctx, "event-1")
	require.NoError(t, err)
	require.Equal(t, []string{"user-1", "user-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepository_RemoveManual(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		index   int
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name:  "success",
			index: 1,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM event_manual_participants`).
					WithArgs("event-1", 1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:  "index past end",
			index: 7,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM event_manual_participants`).
					WithArgs("event-1", 7).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errIs:   domain.ErrInvalidIndex,
		},
		{
			name:    "negative index never reaches the database",
			index:   -1,
			mock:    func(mock sqlmock.Sqlmock) {},
			wantErr: true,
			errIs:   domain.ErrInvalidIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewParticipantRepository(db)
			err = repo.RemoveManual(ctx, "event-1", tt.index)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
