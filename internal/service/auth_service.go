package service

import (
	"context"
	"errors"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/observability"
	"github.com/buran83/makechat/internal/repository"
	"github.com/buran83/makechat/internal/security"
)

var (
	// ErrBadCredentials covers both the wrong-password and unknown-username
	// paths; the wire response never reveals which field was wrong.
	ErrBadCredentials   = errors.New("invalid username or password")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrEmailTaken       = errors.New("email is already taken")
)

type RegisterInput struct {
	Email     string
	Username  string
	Password1 string
	Password2 string
}

// AuthService implements registration, login/logout and credential
// resolution for both mechanisms (cookie sessions and header tokens).
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionStore
	tokens   repository.TokenRepository
	secret   string
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionStore, tokens repository.TokenRepository, secret string) *AuthService {
	return &AuthService{users: users, sessions: sessions, tokens: tokens, secret: secret}
}

// Register creates a new profile. The duplicate pre-checks give clients the
// specific "already taken" messages; the store's unique indexes remain the
// actual guarantee under concurrent registration, and their violation error
// is relayed as-is.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Password1 != in.Password2 {
		observability.RecordAuthAttempt(ctx, "register", "password_mismatch")
		return nil, ErrPasswordMismatch
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		observability.RecordAuthAttempt(ctx, "register", "username_taken")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		observability.RecordAuthAttempt(ctx, "register", "email_taken")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	digest, err := security.HashPassword(in.Password1, s.secret)
	if err != nil {
		observability.RecordAuthAttempt(ctx, "register", "bad_characters")
		return nil, err
	}
	user := &domain.User{Username: in.Username, Email: in.Email, Password: digest}
	if err := s.users.Create(ctx, user); err != nil {
		observability.RecordAuthAttempt(ctx, "register", "store_error")
		return nil, err
	}
	observability.RecordAuthAttempt(ctx, "register", "success")
	return user, nil
}

// Login verifies credentials and opens a fresh session. Disabled users and
// unknown usernames fail exactly like wrong passwords.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	digest, err := security.HashPassword(password, s.secret)
	if err != nil {
		observability.RecordAuthAttempt(ctx, "login", "bad_characters")
		return nil, "", err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthAttempt(ctx, "login", "failure")
			return nil, "", ErrBadCredentials
		}
		return nil, "", err
	}
	if user.IsDisabled || user.Password != digest {
		observability.RecordAuthAttempt(ctx, "login", "failure")
		return nil, "", ErrBadCredentials
	}
	value, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}
	observability.RecordAuthAttempt(ctx, "login", "success")
	return user, value, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionValue string) error {
	if err := s.sessions.Delete(ctx, sessionValue); err != nil {
		observability.RecordAuthAttempt(ctx, "logout", "error")
		return err
	}
	observability.RecordAuthAttempt(ctx, "logout", "success")
	return nil
}

// ResolveSession maps a session cookie value to its owning user. Expired and
// missing sessions are indistinguishable. Disabled users fail closed.
func (s *AuthService) ResolveSession(ctx context.Context, value string) (*domain.User, error) {
	userID, err := s.sessions.Resolve(ctx, value)
	if err != nil {
		return nil, err
	}
	return s.loadActiveUser(ctx, userID)
}

// ResolveToken maps an X-Auth-Token header value to its owning user.
func (s *AuthService) ResolveToken(ctx context.Context, value string) (*domain.User, error) {
	token, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	return s.loadActiveUser(ctx, token.UserID)
}

func (s *AuthService) loadActiveUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}
