package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/argumetrics/internal/models"
	"github.com/ayush/argumetrics/internal/store"
)

const (
	AdminUsername        = "admin"
	DefaultAdminPassword = "admin123"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error)
}

// Service verifies credentials and manages the session lifecycle.
type Service struct {
	users    UserStore
	sessions SessionStore
	hasher   PasswordHasher
	log      *zap.Logger

	// compared against when the username is unknown so a miss costs the
	// same as a wrong password
	dummyHash string
}

func NewService(users UserStore, sessions SessionStore, hasher PasswordHasher, log *zap.Logger) *Service {
	dummy, err := hasher.Hash("argumetrics-timing-guard")
	if err != nil {
		log.Warn("could not prepare dummy password hash", zap.Error(err))
	}
	return &Service{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		log:       log,
		dummyHash: dummy,
	}
}

// Register creates a user and opens a session for it.
func (s *Service) Register(ctx context.Context, in models.InsertUser) (*models.User, string, error) {
	if err := models.ValidateUser(in); err != nil {
		return nil, "", err
	}

	existing, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUsernameTaken
	}

	user, err := s.createUser(ctx, in)
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}
	return user, token, nil
}

// Login checks credentials and opens a session. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, in models.InsertUser) (*models.User, string, error) {
	if err := models.ValidateUser(in); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if user == nil {
		_ = s.hasher.Compare(s.dummyHash, in.Password)
		return nil, "", ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.Password, in.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	return user, token, nil
}

// Logout destroys the session behind token. An empty or unknown token is a
// no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Resolve maps a session token to its user. Missing, unknown and expired
// tokens, and sessions whose user no longer exists, yield ErrUnauthenticated.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	userID, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve session user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// SeedAdmin creates the "admin" account with password unless it exists.
func (s *Service) SeedAdmin(ctx context.Context, password string) error {
	existing, err := s.users.GetUserByUsername(ctx, AdminUsername)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if existing != nil {
		return nil
	}
	if password == DefaultAdminPassword {
		s.log.Warn("seeding admin account with the default password; rotate it before exposing this deployment")
	}
	_, err = s.createUser(ctx, models.InsertUser{Username: AdminUsername, Password: password})
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info("seeded admin account")
	return nil
}

func (s *Service) createUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	hashed, err := s.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, &models.ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, models.InsertUser{Username: in.Username, Password: hashed})
	if errors.Is(err, store.ErrDuplicateUsername) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
