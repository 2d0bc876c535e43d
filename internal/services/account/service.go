package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tvcatalog/internal/config"
	"tvcatalog/internal/domain/user"
	"tvcatalog/internal/store/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// maxBcryptBytes is the longest input bcrypt accepts.
const maxBcryptBytes = 72

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("username or password incorrect")
	// ErrInvalidToken is returned for malformed, expired or orphaned tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// RegisterRequest represents account registration data
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	User      *user.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expiresIn"`
}

// Service handles accounts, passwords and access tokens
type Service struct {
	users    repositories.UserRepository
	secret   []byte
	lifetime time.Duration
	cost     int
	now      func() time.Time
}

// NewService creates a new account service
func NewService(users repositories.UserRepository, sec config.SecurityCfg) *Service {
	lifetime := sec.TokenLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	cost := sec.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:    users,
		secret:   []byte(sec.JWTSecret),
		lifetime: lifetime,
		cost:     cost,
		now:      time.Now,
	}
}

// Register creates a non-admin user with a hashed password
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	if n := utf8.RuneCountInString(req.Password); n < 10 || n > 256 {
		return nil, &ValidationError{Field: "password", Message: "password is required, min 10 characters, max 256 characters"}
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, &ServiceError{Op: "hash_password", Err: err}
	}

	u, err := user.NewUser(req.Username, req.Email, hash)
	if err != nil {
		return nil, &ValidationError{Field: "username", Message: err.Error()}
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, &ServiceError{Op: "create_user", Err: err}
	}
	return u.Public(), nil
}

// CheckCredentials returns the user owning username when password matches.
func (s *Service) CheckCredentials(ctx context.Context, username, password string) (*user.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &ServiceError{Op: "find_user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), bcryptKey(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueToken signs an access token for u
func (s *Service) IssueToken(u *user.User) (*LoginResponse, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(u.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, &ServiceError{Op: "sign_token", Err: err}
	}
	return &LoginResponse{
		User:      u.Public(),
		Token:     token,
		ExpiresIn: int64(s.lifetime / time.Second),
	}, nil
}

// Authenticate resolves the user a bearer token was issued to
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d gone", ErrInvalidToken, id)
	}
	if err != nil {
		return nil, &ServiceError{Op: "find_user", Err: err}
	}
	return u, nil
}

// User finds a user by ID
func (s *Service) User(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// ByUsername finds a user by username
func (s *Service) ByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// ByEmail finds a user by email
func (s *Service) ByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// List returns a page of users ordered by id
func (s *Service) List(ctx context.Context, limit, offset int) ([]user.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, &ServiceError{Op: "list_users", Err: err}
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// UpdateProfile changes the email and/or password of a user. Nil values are
// left untouched.
func (s *Service) UpdateProfile(ctx context.Context, id int64, email, password *string) (*user.User, error) {
	var hash *string
	if password != nil {
		h, err := s.hashPassword(*password)
		if err != nil {
			return nil, &ServiceError{Op: "hash_password", Err: err}
		}
		hash = &h
	}
	if email != nil {
		e := strings.TrimSpace(*email)
		email = &e
	}

	u, err := s.users.UpdateProfile(ctx, id, email, hash)
	if err != nil {
		return nil, &ServiceError{Op: "update_profile", Err: err}
	}
	return u.Public(), nil
}

// SetAdmin grants or revokes admin rights of target on behalf of actor
func (s *Service) SetAdmin(ctx context.Context, actorID, targetID int64, admin bool) (*user.User, error) {
	if actorID == targetID {
		return nil, &ValidationError{Field: "admin", Message: "admin cannot change self"}
	}
	u, err := s.users.SetAdmin(ctx, targetID, admin)
	if err != nil {
		return nil, &ServiceError{Op: "set_admin", Err: err}
	}
	return u.Public(), nil
}

func (s *Service) hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(bcryptKey(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// bcryptKey returns the part of password bcrypt hashes. bcrypt reads at most
// 72 bytes, longer passwords are cut there.
func bcryptKey(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptBytes {
		b = b[:maxBcryptBytes]
	}
	return b
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// ServiceError represents a service operation error
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("account service [%s]: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
