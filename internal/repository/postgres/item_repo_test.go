package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/JCHEPO/kiu/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestItemRepository_Claim(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "first claimant wins",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE event_items`).
					WithArgs("event-1", "item-1", "user-2").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already claimed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE event_items`).
					WithArgs("event-1", "item-1", "user-2").
					WillReturnResult(sqlmock.NewResult(0, 0))
				rows := sqlmock.NewRows([]string{"id", "event_id", "name", "claimed_by", "created_at"}).
					AddRow("item-1", "event-1", "Hielo", "user-3", time.Now())
				mock.ExpectQuery(`SELECT id, event_id, name, claimed_by, created_at`).
					WithArgs("event-1", "item-1").
					WillReturnRows(rows)
			},
			wantErr: true,
			errIs:   domain.ErrAlreadyClaimed,
		},
		{
			name: "item does not exist",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE event_items`).
					WithArgs("event-1", "item-1", "user-2").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT id, event_id, name, claimed_by, created_at`).
					WithArgs("event-1", "item-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE event_items`).
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
			repo := NewItemRepository(db)
			err = repo.Claim(ctx, "event-1", "item-1", "user-2")
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

func TestItemRepository_Add(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("item-1", createdAt)
	mock.ExpectQuery(`INSERT INTO event_items`).
		WithArgs("event-1", "Carbón").
		WillReturnRows(rows)

	repo := NewItemRepository(db)
	item, err := repo.Add(ctx, "event-1", "Carbón")
	require.NoError(t, err)
	require.Equal(t, "item-1", item.ID)
	require.Equal(t, "Carbón", item.Name)
	require.Equal(t, createdAt, item.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
