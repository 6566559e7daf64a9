package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// AuthService handles account registration, login, logout, and the
// per-request authentication gate.
type AuthService struct {
	tokens *TokenService
	users  ports.UserRepository
	hasher ports.PasswordHasher
	events ports.EventPublisher
	log    *slog.Logger
}

// NewAuthService creates an auth service. events may be nil when no broker
// is configured.
func NewAuthService(tokens *TokenService, users ports.UserRepository, hasher ports.PasswordHasher, events ports.EventPublisher, log *slog.Logger) *AuthService {
	return &AuthService{
		tokens: tokens,
		users:  users,
		hasher: hasher,
		events: events,
		log:    log,
	}
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*core.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, core.ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Role:         "member",
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return TokenPair{}, core.ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return TokenPair{}, core.ErrInvalidCredentials
	}

	return s.tokens.IssuePair(user.ID)
}

// Refresh rotates a refresh token into a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken)
}

// Logout revokes the access token and, when supplied, the refresh token.
// Already-revoked, expired, or unparsable tokens do not fail the call.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
			return err
		}
	}

	s.publishLogout(ctx, accessToken)
	return nil
}

// Authenticate is the per-request gate: it verifies the bearer string and
// resolves its subject to a user record. A subject with no matching user is
// rejected; the HTTP layer presents that identically to a malformed token so
// responses don't reveal which user IDs exist.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (core.Identity, error) {
	if bearer == "" {
		return core.Identity{}, core.ErrMalformed
	}

	cred, err := s.tokens.Verify(ctx, bearer)
	if err != nil {
		return core.Identity{}, err
	}
	if cred.Kind != core.TokenKindAccess {
		return core.Identity{}, core.ErrWrongKind
	}

	user, err := s.users.GetByID(ctx, cred.Subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Identity{}, core.ErrUnknownSubject
		}
		return core.Identity{}, err
	}

	return core.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// ChangePassword verifies the old password before storing a hash of the new
// one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return core.ErrInvalidCredentials
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}

// publishLogout emits a best-effort logout event; the revocation itself has
// already happened, so a publish failure is logged and swallowed.
func (s *AuthService) publishLogout(ctx context.Context, accessToken string) {
	if s.events == nil {
		return
	}

	// The token is already revoked, so recover the subject straight from the
	// codec rather than through Verify.
	cred, err := s.tokens.codec.Decode(accessToken)
	if err != nil {
		return
	}

	if err := s.events.PublishLogout(ctx, cred.Subject, core.TokenKindAccess); err != nil {
		s.log.Warn("failed to publish logout event", "error", err)
	}
}
