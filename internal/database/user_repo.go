package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"haldoor-backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepo handles user database operations
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{db: DB}
}

// NormalizeEmail lowercases and trims an email address. Emails are stored
// and compared in this form only.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create creates a new user
func (r *UserRepo) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = NormalizeEmail(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	exists, err := r.ExistsByEmail(user.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserAlreadyExists
	}

	_, err = r.db.Exec(`
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(`
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE id = ?
	`, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(`
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE email = ?
	`, NormalizeEmail(email)).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetRole retrieves the current persisted role for a user. Authorization
// checks consult this, never the role claim carried by a token.
func (r *UserRepo) GetRole(id string) (models.Role, error) {
	var role models.Role
	err := r.db.QueryRow("SELECT role FROM users WHERE id = ?", id).Scan(&role)
	if err == sql.ErrNoRows {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// List retrieves all users
func (r *UserRepo) List() ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash,
			&user.Role, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update updates a user's profile fields
func (r *UserRepo) Update(user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now()

	result, err := r.db.Exec(`
		UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?
	`, user.Name, user.Email, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepo) UpdatePassword(id, passwordHash string) error {
	result, err := r.db.Exec(`
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
	`, passwordHash, time.Now(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateRole changes a user's role. The change takes effect on the next
// privileged request because authorization re-reads the persisted role.
func (r *UserRepo) UpdateRole(id string, role models.Role) error {
	result, err := r.db.Exec(`
		UPDATE users SET role = ?, updated_at = ? WHERE id = ?
	`, role, time.Now(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete deletes a user
func (r *UserRepo) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// ExistsByEmail checks if a user with the given email exists
func (r *UserRepo) ExistsByEmail(email string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", NormalizeEmail(email)).Scan(&count)
	return count > 0, err
}
