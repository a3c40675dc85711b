package auth

import (
	"errors"

	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles authentication logic
type Service struct {
	userRepo   *database.UserRepo
	tokens     *TokenService
	bcryptCost int
}

// NewService creates a new auth service
func NewService(tokens *TokenService, bcryptCost int) *Service {
	return &Service{
		userRepo:   database.NewUserRepo(),
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Tokens exposes the token service for middleware wiring
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// HashPassword hashes a plaintext password at the configured cost
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

// LoginResponse represents a successful login
type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new standard account. Admin privileges are only ever
// granted through the role endpoint, never at registration.
func (s *Service) Register(name, email, password string) (*models.User, error) {
	passwordHash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a session token
func (s *Service) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	valid, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{User: user, Token: token}, nil
}
