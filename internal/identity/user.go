// Package identity provides admin account and session management.
//
// This package handles internal database tables (JSONL-backed) for:
//   - Admin accounts and authentication
//   - Active sessions backing issued JWT tokens
package identity

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/maruel/ksid"
	"golang.org/x/crypto/bcrypt"

	"github.com/realsalbednarz/notion-form-sub000/internal/jsonldb"
)

// User represents an admin account (persistent fields only).
type User struct {
	ID       ksid.ID   `json:"id" jsonschema:"description=Unique user identifier"`
	Email    string    `json:"email" jsonschema:"description=User email address"`
	Name     string    `json:"name" jsonschema:"description=User display name"`
	Created  time.Time `json:"created" jsonschema:"description=Account creation timestamp"`
	Modified time.Time `json:"modified" jsonschema:"description=Last modification timestamp"`
}

// GetID returns the User's ID.
func (u *User) GetID() ksid.ID {
	return u.ID
}

// UserService handles admin account management and authentication.
type UserService struct {
	table   *jsonldb.Table[*userStorage]
	byEmail *jsonldb.UniqueIndex[string, *userStorage]
}

// NewUserService creates a new user service.
func NewUserService(tablePath string) (*UserService, error) {
	table, err := jsonldb.NewTable[*userStorage](tablePath)
	if err != nil {
		return nil, err
	}
	byEmail := jsonldb.NewUniqueIndex(table, func(u *userStorage) string { return u.Email })
	return &UserService{table: table, byEmail: byEmail}, nil
}

// Create creates a new admin account.
func (s *UserService) Create(email, password, name string) (*User, error) {
	if email == "" || password == "" {
		return nil, errEmailPwdRequired
	}
	if s.byEmail.Get(email) != nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now()
	stored := &userStorage{
		User: User{
			ID:       ksid.NewID(),
			Email:    email,
			Name:     name,
			Created:  now,
			Modified: now,
		},
		PasswordHash: string(hash),
	}
	if err := s.table.Append(stored); err != nil {
		return nil, err
	}
	user := stored.User
	return &user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(id ksid.ID) (*User, error) {
	if id.IsZero() {
		return nil, errUserIDEmpty
	}
	stored := s.table.Get(id)
	if stored == nil {
		return nil, ErrUserNotFound
	}
	user := stored.User
	return &user, nil
}

// GetByEmail retrieves a user by email. O(1) via index.
func (s *UserService) GetByEmail(email string) (*User, error) {
	stored := s.byEmail.Get(email)
	if stored == nil {
		return nil, ErrUserNotFound
	}
	user := stored.User
	return &user, nil
}

// Authenticate verifies user credentials. O(1) lookup via index.
func (s *UserService) Authenticate(email, password string) (*User, error) {
	stored := s.byEmail.Get(email)
	if stored == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user := stored.User
	return &user, nil
}

// SetPassword replaces a user's password.
func (s *UserService) SetPassword(id ksid.ID, password string) error {
	if password == "" {
		return errEmailPwdRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = s.table.Modify(id, func(row *userStorage) error {
		row.PasswordHash = string(hash)
		row.Modified = time.Now()
		return nil
	})
	return err
}

// Modify atomically modifies a user.
func (s *UserService) Modify(id ksid.ID, fn func(user *User) error) (*User, error) {
	if id.IsZero() {
		return nil, errUserIDEmpty
	}
	stored, err := s.table.Modify(id, func(row *userStorage) error {
		if err := fn(&row.User); err != nil {
			return err
		}
		row.Modified = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	user := stored.User
	return &user, nil
}

// All returns an iterator over all users.
func (s *UserService) All() iter.Seq[*User] {
	return func(yield func(*User) bool) {
		for stored := range s.table.All() {
			user := stored.User
			if !yield(&user) {
				return
			}
		}
	}
}

// Len returns the number of users.
func (s *UserService) Len() int {
	return s.table.Len()
}

var (
	// ErrUserExists is returned when creating a user with a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")

	errUserIDEmpty      = errors.New("user id is required")
	errEmailPwdRequired = errors.New("email and password are required")
)

type userStorage struct {
	User
	PasswordHash string `json:"password_hash" jsonschema:"description=Bcrypt-hashed password"`
}

func (u *userStorage) Clone() *userStorage {
	c := *u
	return &c
}

// GetID returns the userStorage's ID.
func (u *userStorage) GetID() ksid.ID {
	return u.ID
}
