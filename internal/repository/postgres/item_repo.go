package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JCHEPO/kiu/internal/domain"
)

type itemRepository struct {
	DB *sql.DB
}

func NewItemRepository(db *sql.DB) domain.ItemRepository {
	return &itemRepository{DB: db}
}

func (r *itemRepository) Add(ctx context.Context, eventID, name string) (*domain.Item, error) {
	item := &domain.Item{EventID: eventID, Name: name}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO event_items (event_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, eventID, name).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepository) Get(ctx context.Context, eventID, itemID string) (*domain.Item, error) {
	item := &domain.Item{}
	var claimedBy sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, event_id, name, claimed_by, created_at
		FROM event_items
		WHERE event_id = $1 AND id = $2
	`, eventID, itemID).Scan(&item.ID, &item.EventID, &item.Name, &claimedBy, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if claimedBy.Valid {
		item.ClaimedBy = claimedBy.String
	}
	return item, nil
}

// Claim performs the unclaimed-to-claimed transition as one conditional
// update. Of two concurrent claimants exactly one statement matches the
// claimed_by IS NULL predicate; the loser gets zero rows and a follow-up read
// tells it whether the item was absent or already taken.
func (r *itemRepository) Claim(ctx context.Context, eventID, itemID, userID string) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE event_items
		SET claimed_by = $3
		WHERE event_id = $1 AND id = $2 AND claimed_by IS NULL
	`, eventID, itemID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 1 {
		return nil
	}
	if _, err := r.Get(ctx, eventID, itemID); err != nil {
		return err
	}
	return domain.ErrAlreadyClaimed
}
