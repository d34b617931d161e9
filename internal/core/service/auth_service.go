package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

const (
	TokenExpirationHours = 1
	BcryptCost           = 10
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService manages API operators and the bearer tokens they sign in with.
type AuthService struct {
	handle       *repository.Handle
	jwtSecret    string
	jwtAlgorithm string
}

func NewAuthService(handle *repository.Handle, jwtSecret, jwtAlgorithm string) *AuthService {
	return &AuthService{
		handle:       handle,
		jwtSecret:    jwtSecret,
		jwtAlgorithm: jwtAlgorithm,
	}
}

func (s *AuthService) users(ctx context.Context) (repository.UserRepository, error) {
	store, err := s.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	return store.Users(), nil
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateUser stores a new operator with a hashed password.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	exists, err := users.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.Fault("create user", fmt.Errorf("%w: user %s", repository.ErrDuplicate, username))
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := domain.NewUser(username, hash)
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, username, password string) error {
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user.ChangePassword(hash)
	return users.Update(ctx, user)
}

func (s *AuthService) DeleteUser(ctx context.Context, username string) error {
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	return users.Delete(ctx, username)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	return users.List(ctx)
}

// Login checks the credentials and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	users, err := s.users(ctx)
	if err != nil {
		return "", err
	}

	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !s.VerifyPassword(password, user.Password) {
		return "", ErrInvalidCredentials
	}

	return s.generateJWT(user.Username)
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.signingMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token claims")
}

func (s *AuthService) generateJWT(subject string) (string, error) {
	now := time.Now()
	expiresAt := now.Add(TokenExpirationHours * time.Hour)

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "clientbook",
		},
	}

	token := jwt.NewWithClaims(s.signingMethod(), claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) signingMethod() jwt.SigningMethod {
	switch s.jwtAlgorithm {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	jwt.RegisteredClaims
}
