package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Gender is the closed set of gender values a user can register with.
type Gender string

const (
	GenderMan   Gender = "man"
	GenderWoman Gender = "woman"
	GenderOther Gender = "other"
)

// Valid reports whether g is one of the known gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMan, GenderWoman, GenderOther:
		return true
	}
	return false
}

// User represents a registered user
// swagger:model User
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	LastName  string     `json:"last_name"`
	Gender    Gender     `json:"gender"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	PasswordHash string `json:"-"`
	Salt         string `json:"-"`
}

// DisplayName returns the name shown to other participants. Falls back to the
// email local part when the user never filled in a name.
func (u *User) DisplayName() string {
	if u.Name != "" && u.LastName != "" {
		return u.Name + " " + u.LastName
	}
	if u.Name != "" {
		return u.Name
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// UserSummary is the display form of a user reference embedded in event
// snapshots (creator, participants, message senders, item claimers).
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// AuthService defines signup and login.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name, lastName string, gender Gender, birthDate *time.Time) (*User, error)
	// Login verifies credentials and returns a bearer token plus the user.
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}
