package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aviramh/gradecast-be/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(name, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	Logout(id string) error
	GetUserByID(id string) (models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(id, name, email string) (models.User, error)
	DeleteUser(id string) error
}

// Notifier receives presence events for the live admin feed. A nil
// notifier is allowed and drops all events.
type Notifier interface {
	BroadcastEvent(action string, payload interface{})
}

// UserService provides business logic for account and session management.
type UserService struct {
	db       *sql.DB
	notifier Notifier
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, notifier Notifier) *UserService {
	return &UserService{db: db, notifier: notifier}
}

// normalizeEmail trims and lower-cases an address. Emails are stored and
// compared only in this form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation reports whether err is the sqlite unique-index error
// on users.email.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *UserService) notify(action string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastEvent(action, payload)
	}
}

// Register creates a new user with a hashed password. The new account is
// not logged in automatically.
func (s *UserService) Register(name, email, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, name, email, password_hash, online, created_at) VALUES(?, ?, ?, ?, 0, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailExists
		}
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	s.notify("user.created", user)
	return user, nil
}

// Authenticate verifies credentials and, on success, marks the user
// online and advances lastLogin. Unknown email and wrong password are
// the same error to the caller.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, err := s.getByEmail(normalizeEmail(email))
	if err != nil {
		if err == ErrNotFound {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	now := time.Now()
	if _, err := s.db.Exec("UPDATE users SET online = 1, last_login = ? WHERE id = ?", now, user.ID); err != nil {
		return models.User{}, err
	}
	user.Online = true
	user.LastLogin = &now

	// Don't send the password hash to the client
	user.PasswordHash = ""
	s.notify("user.online", user)
	return user, nil
}

// Logout flips the user's online flag. The session token itself stays
// valid until its natural expiry.
func (s *UserService) Logout(id string) error {
	res, err := s.db.Exec("UPDATE users SET online = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.notify("user.offline", map[string]string{"id": id})
	return nil
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT id, name, email, online, last_login, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

// getByEmail retrieves a single user by normalized email, including the
// password hash for credential verification.
func (s *UserService) getByEmail(email string) (models.User, error) {
	var user models.User
	var lastLogin sql.NullTime
	row := s.db.QueryRow("SELECT id, name, email, password_hash, online, last_login, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Online, &lastLogin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}

// ListUsers returns all user records in insertion order. Password hashes
// are never selected.
func (s *UserService) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT id, name, email, online, last_login, created_at FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Online, &lastLogin, &user.CreatedAt); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			user.LastLogin = &lastLogin.Time
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser changes a user's name and email. The unique index on email
// rejects an address held by a different user; writing the same
// normalized address back to the same row passes.
func (s *UserService) UpdateUser(id, name, email string) (models.User, error) {
	if _, err := s.GetUserByID(id); err != nil {
		return models.User{}, err
	}

	_, err := s.db.Exec("UPDATE users SET name = ?, email = ? WHERE id = ?", name, normalizeEmail(email), id)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailExists
		}
		return models.User{}, err
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}
	s.notify("user.updated", user)
	return user, nil
}

// DeleteUser removes a user permanently.
func (s *UserService) DeleteUser(id string) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.notify("user.deleted", map[string]string{"id": id})
	return nil
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var lastLogin sql.NullTime
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Online, &lastLogin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}
