package postgres

import (
	"context"
	"database/sql"

	"github.com/JCHEPO/kiu/internal/domain"
)

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{DB: db}
}

func (r *messageRepository) Append(ctx context.Context, eventID, senderID, text string) (*domain.Message, error) {
	m := &domain.Message{EventID: eventID, SenderID: senderID, Text: text}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO event_messages (event_id, sender_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, eventID, senderID, text).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}
