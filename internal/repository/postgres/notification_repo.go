package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JCHEPO/kiu/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{DB: db}
}

// CreateBatch inserts all notifications in one transaction. The fanout
// contract requires every notification to be persisted before any of them is
// delivered, so a partial batch must never become visible.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (recipient_id, event_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range notifications {
		if err := stmt.QueryRowContext(ctx, n.RecipientID, n.EventID, n.Message).Scan(&n.ID, &n.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT n.id, n.recipient_id, n.event_id, e.title, n.message, n.read, n.created_at
		FROM notifications n
		JOIN events e ON e.id = n.event_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.EventID, &n.EventTitle, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := r.DB.QueryRowContext(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, recipient_id, event_id, message, read, created_at
	`, id, recipientID).Scan(&n.ID, &n.RecipientID, &n.EventID, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE recipient_id = $1 AND read = FALSE
	`, recipientID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
