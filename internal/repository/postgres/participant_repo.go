package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/JCHEPO/kiu/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

// Add appends the user to the roster. The capacity check and the insert are
// one statement, so two concurrent joins cannot both slip past the limit; the
// unique constraint on (event_id, user_id) rejects a duplicate join that
// races the existence pre-check in the service.
func (r *participantRepository) Add(ctx context.Context, eventID, userID string, maxParticipants int) error {
	query := `
		INSERT INTO event_participants (event_id, user_id, joined_at)
		SELECT $1, $2, NOW()
		WHERE (SELECT COUNT(*) FROM event_participants WHERE event_id = $1)
			+ (SELECT COUNT(*) FROM event_manual_participants WHERE event_id = $1) < $3
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID, maxParticipants)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyJoined
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventFull
	}
	return nil
}

func (r *participantRepository) Remove(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	return err
}

func (r *participantRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2
		)
	`, eventID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *participantRepository) ListUserIDs(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id FROM event_participants
		WHERE event_id = $1
		ORDER BY joined_at, user_id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *participantRepository) AddManual(ctx context.Context, eventID, name string, maxParticipants int) error {
	query := `
		INSERT INTO event_manual_participants (event_id, name, created_at)
		SELECT $1, $2, NOW()
		WHERE (SELECT COUNT(*) FROM event_participants WHERE event_id = $1)
			+ (SELECT COUNT(*) FROM event_manual_participants WHERE event_id = $1) < $3
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, name, maxParticipants)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventFull
	}
	return nil
}

// RemoveManual deletes the entry at the zero-based position in insertion
// order. Addressing by position matches the external contract; no position
// column is needed because the order is (created_at, id).
func (r *participantRepository) RemoveManual(ctx context.Context, eventID string, index int) error {
	if index < 0 {
		return domain.ErrInvalidIndex
	}
	query := `
		DELETE FROM event_manual_participants
		WHERE id = (
			SELECT id FROM event_manual_participants
			WHERE event_id = $1
			ORDER BY created_at, id
			OFFSET $2 LIMIT 1
		)
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, index)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvalidIndex
	}
	return nil
}
