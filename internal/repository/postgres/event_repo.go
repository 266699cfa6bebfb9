package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/JCHEPO/kiu/internal/domain"
)

const eventColumns = `id, title, description, location, date, cost, category, subcategory,
		max_participants, gender_restriction, creator_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Date, &e.Cost,
		&e.Category, &e.Subcategory, &e.MaxParticipants,
		&e.GenderRestriction, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts the event row and the creator's participant row in one
// transaction so the creator-is-always-a-participant invariant holds from the
// first visible state.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (title, description, location, date, cost, category, subcategory,
			max_participants, gender_restriction, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.Date, e.Cost, e.Category, e.Subcategory,
		e.MaxParticipants, e.GenderRestriction, e.CreatorID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`, e.ID, e.CreatorID, e.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.EventSummary, error) {
	query := `
		SELECT e.id, e.title, e.description, e.location, e.date, e.cost, e.category, e.subcategory,
			e.max_participants, e.gender_restriction, e.creator_id, e.created_at, e.updated_at,
			u.id, u.email, u.name, u.last_name,
			(SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id)
				+ (SELECT COUNT(*) FROM event_manual_participants m WHERE m.event_id = e.id)
		FROM events e
		JOIN users u ON u.id = e.creator_id
	`
	var args []any
	if restrictions := allowedRestrictions(filter.Gender); restrictions != nil {
		query += ` WHERE e.gender_restriction = ANY($1)`
		args = append(args, restrictionsArray(restrictions))
	}
	query += ` ORDER BY e.date ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*domain.EventSummary, 0)
	for rows.Next() {
		s := &domain.EventSummary{}
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Location, &s.Date, &s.Cost,
			&s.Category, &s.Subcategory, &s.MaxParticipants,
			&s.GenderRestriction, &s.CreatorID, &s.CreatedAt, &s.UpdatedAt,
			&s.Creator.ID, &s.Creator.Email, &s.Creator.Name, &s.Creator.LastName,
			&s.ParticipantCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// allowedRestrictions maps a requester gender to the restrictions whose
// events they may see. Nil means no filtering.
func allowedRestrictions(g domain.Gender) []domain.GenderRestriction {
	switch g {
	case "":
		return nil
	case domain.GenderMan:
		return []domain.GenderRestriction{domain.RestrictionMenOnly, domain.RestrictionMixed}
	case domain.GenderWoman:
		return []domain.GenderRestriction{domain.RestrictionWomenOnly, domain.RestrictionMixed}
	default:
		return []domain.GenderRestriction{domain.RestrictionMixed}
	}
}

func restrictionsArray(rs []domain.GenderRestriction) any {
	vals := make([]string, len(rs))
	for i, r := range rs {
		vals[i] = string(r)
	}
	return pq.Array(vals)
}

func (r *eventRepository) GetDetail(ctx context.Context, id string) (*domain.EventDetail, error) {
	event, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &domain.EventDetail{Event: *event}

	creator := &domain.UserSummary{}
	err = r.DB.QueryRowContext(ctx, `
		SELECT id, email, name, last_name FROM users WHERE id = $1
	`, event.CreatorID).Scan(&creator.ID, &creator.Email, &creator.Name, &creator.LastName)
	if err != nil {
		return nil, fmt.Errorf("resolve creator: %w", err)
	}
	detail.Creator = *creator

	if detail.Participants, err = r.listParticipants(ctx, id); err != nil {
		return nil, err
	}
	if detail.ManualParticipants, err = r.listManualParticipants(ctx, id); err != nil {
		return nil, err
	}
	if detail.Items, err = r.listItems(ctx, id); err != nil {
		return nil, err
	}
	if detail.Messages, err = r.listMessages(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *eventRepository) listParticipants(ctx context.Context, eventID string) ([]domain.UserSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.email, u.name, u.last_name
		FROM event_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.event_id = $1
		ORDER BY p.joined_at, u.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]domain.UserSummary, 0)
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.LastName); err != nil {
			return nil, err
		}
		participants = append(participants, u)
	}
	return participants, rows.Err()
}

func (r *eventRepository) listManualParticipants(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT name FROM event_manual_participants
		WHERE event_id = $1
		ORDER BY created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list manual participants: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *eventRepository) listItems(ctx context.Context, eventID string) ([]domain.ItemDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT i.id, i.name, u.id, u.email, u.name, u.last_name
		FROM event_items i
		LEFT JOIN users u ON u.id = i.claimed_by
		WHERE i.event_id = $1
		ORDER BY i.created_at, i.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ItemDetail, 0)
	for rows.Next() {
		var it domain.ItemDetail
		var uid, uemail, uname, ulast sql.NullString
		if err := rows.Scan(&it.ID, &it.Name, &uid, &uemail, &uname, &ulast); err != nil {
			return nil, err
		}
		if uid.Valid {
			it.ClaimedBy = &domain.UserSummary{
				ID:       uid.String,
				Email:    uemail.String,
				Name:     uname.String,
				LastName: ulast.String,
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *eventRepository) listMessages(ctx context.Context, eventID string) ([]domain.MessageDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.text, m.created_at, u.id, u.email, u.name, u.last_name
		FROM event_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.event_id = $1
		ORDER BY m.created_at, m.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.MessageDetail, 0)
	for rows.Next() {
		var m domain.MessageDetail
		if err := rows.Scan(&m.ID, &m.Text, &m.CreatedAt, &m.Sender.ID, &m.Sender.Email, &m.Sender.Name, &m.Sender.LastName); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if patch.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *patch.Location)
		n++
	}
	if patch.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *patch.Date)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns+`
	`, strings.Join(setClauses, ", "), n)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
