package services

import (
	"context"
	"fmt"
	"time"

	"github.com/JCHEPO/kiu/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	detailErr error
	// roster shown in GetDetail snapshots, keyed by event ID
	participants map[string][]domain.UserSummary
	manual       map[string][]string
	items        map[string][]domain.ItemDetail
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:         make(map[string]*domain.Event),
		nextID:       1,
		participants: make(map[string][]domain.UserSummary),
		manual:       make(map[string][]string),
		items:        make(map[string][]domain.ItemDetail),
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	f.participants[e.ID] = []domain.UserSummary{{ID: e.CreatorID}}
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetDetail(ctx context.Context, id string) (*domain.EventDetail, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	d := &domain.EventDetail{
		Event:              *e,
		Creator:            domain.UserSummary{ID: e.CreatorID},
		Participants:       f.participants[id],
		ManualParticipants: f.manual[id],
		Items:              f.items[id],
		Messages:           []domain.MessageDetail{},
	}
	if d.Participants == nil {
		d.Participants = []domain.UserSummary{}
	}
	if d.ManualParticipants == nil {
		d.ManualParticipants = []string{}
	}
	if d.Items == nil {
		d.Items = []domain.ItemDetail{}
	}
	return d, nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.EventSummary, error) {
	var out []*domain.EventSummary
	for _, e := range f.byID {
		if filter.Gender != "" && !e.GenderRestriction.Allows(filter.Gender) {
			continue
		}
		out = append(out, &domain.EventSummary{
			Event:            *e,
			Creator:          domain.UserSummary{ID: e.CreatorID},
			ParticipantCount: len(f.participants[e.ID]) + len(f.manual[e.ID]),
		})
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	e.UpdatedAt = time.Now()
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// addEvent seeds an event without going through Create.
func (f *fakeEventRepo) addEvent(e *domain.Event) {
	f.byID[e.ID] = e
	if f.participants[e.ID] == nil {
		f.participants[e.ID] = []domain.UserSummary{{ID: e.CreatorID}}
	}
}

// fakeParticipantRepo is an in-memory ParticipantRepository for tests. It
// enforces the same capacity and uniqueness rules as the real one.
type fakeParticipantRepo struct {
	joined  map[string][]string // eventID -> userIDs in join order
	manual  map[string][]string // eventID -> free-text names in add order
	addErr  error
	listErr error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		joined: make(map[string][]string),
		manual: make(map[string][]string),
	}
}

func (f *fakeParticipantRepo) Add(ctx context.Context, eventID, userID string, maxParticipants int) error {
	if f.addErr != nil {
		return f.addErr
	}
	for _, id := range f.joined[eventID] {
		if id == userID {
			return domain.ErrAlreadyJoined
		}
	}
	if len(f.joined[eventID])+len(f.manual[eventID]) >= maxParticipants {
		return domain.ErrEventFull
	}
	f.joined[eventID] = append(f.joined[eventID], userID)
	return nil
}

func (f *fakeParticipantRepo) Remove(ctx context.Context, eventID, userID string) error {
	ids := f.joined[eventID]
	for i, id := range ids {
		if id == userID {
			f.joined[eventID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeParticipantRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	for _, id := range f.joined[eventID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeParticipantRepo) ListUserIDs(ctx context.Context, eventID string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.joined[eventID], nil
}

func (f *fakeParticipantRepo) AddManual(ctx context.Context, eventID, name string, maxParticipants int) error {
	if f.addErr != nil {
		return f.addErr
	}
	if len(f.joined[eventID])+len(f.manual[eventID]) >= maxParticipants {
		return domain.ErrEventFull
	}
	f.manual[eventID] = append(f.manual[eventID], name)
	return nil
}

func (f *fakeParticipantRepo) RemoveManual(ctx context.Context, eventID string, index int) error {
	names := f.manual[eventID]
	if index < 0 || index >= len(names) {
		return domain.ErrInvalidIndex
	}
	f.manual[eventID] = append(names[:index], names[index+1:]...)
	return nil
}

// fakeItemRepo is an in-memory ItemRepository for tests.
type fakeItemRepo struct {
	items  map[string][]*domain.Item // eventID -> items
	nextID int
	addErr error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string][]*domain.Item), nextID: 1}
}

func (f *fakeItemRepo) Add(ctx context.Context, eventID, name string) (*domain.Item, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	item := &domain.Item{
		ID:        fmt.Sprintf("item-%d", f.nextID),
		EventID:   eventID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.items[eventID] = append(f.items[eventID], item)
	return item, nil
}

func (f *fakeItemRepo) Get(ctx context.Context, eventID, itemID string) (*domain.Item, error) {
	for _, item := range f.items[eventID] {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeItemRepo) Claim(ctx context.Context, eventID, itemID, userID string) error {
	for _, item := range f.items[eventID] {
		if item.ID == itemID {
			if item.ClaimedBy != "" {
				return domain.ErrAlreadyClaimed
			}
			item.ClaimedBy = userID
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeMessageRepo is an in-memory MessageRepository for tests.
type fakeMessageRepo struct {
	messages  []*domain.Message
	nextID    int
	appendErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1}
}

func (f *fakeMessageRepo) Append(ctx context.Context, eventID, senderID, text string) (*domain.Message, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	m := &domain.Message{
		ID:        fmt.Sprintf("msg-%d", f.nextID),
		EventID:   eventID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.messages = append(f.messages, m)
	return m, nil
}

// fakeNotificationRepo is an in-memory NotificationRepository for tests.
type fakeNotificationRepo struct {
	created   []*domain.Notification
	nextID    int
	createErr error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (f *fakeNotificationRepo) CreateBatch(ctx context.Context, notifications []*domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	now := time.Now()
	for _, n := range notifications {
		n.ID = fmt.Sprintf("ntf-%d", f.nextID)
		n.CreatedAt = now
		f.nextID++
		f.created = append(f.created, n)
	}
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		if f.created[i].RecipientID == recipientID {
			out = append(out, f.created[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, recipientID string) (*domain.Notification, error) {
	for _, n := range f.created {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
			return n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	for _, n := range f.created {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	nextID    int
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) addUser(id string, gender domain.Gender) {
	f.byID[id] = &domain.User{ID: id, Email: id + "@example.com", Gender: gender}
}

// fakeBroadcaster records everything published so tests can assert on fanout.
type fakeBroadcaster struct {
	eventUpdates  []*domain.EventDetail
	notifications []*domain.Notification
}

func (f *fakeBroadcaster) PublishEventUpdate(ctx context.Context, event *domain.EventDetail) {
	f.eventUpdates = append(f.eventUpdates, event)
}

func (f *fakeBroadcaster) PublishNotification(ctx context.Context, n *domain.Notification) {
	f.notifications = append(f.notifications, n)
}

// fakeHasher is a trivially reversible PasswordHasher for tests.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// fakeTokenIssuer issues predictable tokens.
type fakeTokenIssuer struct{ err error }

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// fakeEmailService records welcome emails; optionally fails.
type fakeEmailService struct {
	sent []*domain.WelcomeEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}
