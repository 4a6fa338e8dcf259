package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"
	"watchstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. A non-positive tokenTTL falls back to 24 hours.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account and returns it with a fresh token.
func (s *AuthService) Register(name, email, password string) (*models.User, string, error) {
	user, err := s.createUser(name, email, password, models.RoleUser)
	if err != nil {
		return nil, "", err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// EnsureAdmin creates the admin account unless the email is already registered.
func (s *AuthService) EnsureAdmin(name, email, password string) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(NormalizeEmail(email))
	if err == nil && existing != nil {
		return existing, nil
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return s.createUser(name, email, password, models.RoleAdmin)
}

func (s *AuthService) createUser(name, email, password, role string) (*models.User, error) {
	email = NormalizeEmail(email)
	existing, err := s.userRepo.GetByEmail(email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", email, apperr.ErrConflict)
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns it with a JWT token if successful.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(NormalizeEmail(email))
	if err != nil || user == nil {
		// Same answer for unknown email and wrong password.
		return nil, "", fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetProfile returns the account behind a token's user ID.
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
// The role claim is trusted as issued; it is not re-checked against the store.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %v: %w", err, apperr.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	}
	if id, _ := claims["user_id"].(string); id == "" {
		return nil, fmt.Errorf("invalid token: missing user_id: %w", apperr.ErrUnauthorized)
	}
	return claims, nil
}
