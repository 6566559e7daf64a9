// Package service contains the application services: token lifecycle,
// authentication, and task management.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// Default token lifetimes, matching the service's historical configuration.
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenService owns the credential lifecycle: issuing access/refresh pairs,
// verifying opaque token strings, rotating refresh tokens, and revoking.
// It is safe for unbounded concurrent callers; the codec is stateless and
// the revocation store handles its own concurrency control.
type TokenService struct {
	codec      ports.Codec
	store      ports.RevocationStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// NewTokenService creates a token service. Non-positive lifetimes select the
// defaults.
func NewTokenService(codec ports.Codec, store ports.RevocationStore, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenService{
		codec:      codec,
		store:      store,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair mints a new access/refresh pair for the subject.
func (s *TokenService) IssuePair(subject string) (TokenPair, error) {
	access, err := s.IssueAccess(subject)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefresh(subject)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess mints an access token for the subject.
func (s *TokenService) IssueAccess(subject string) (string, error) {
	return s.codec.Encode(subject, core.TokenKindAccess, s.accessTTL)
}

// IssueRefresh mints a refresh token for the subject.
func (s *TokenService) IssueRefresh(subject string) (string, error) {
	return s.codec.Encode(subject, core.TokenKindRefresh, s.refreshTTL)
}

// Verify checks a token string and returns its credential. The revocation
// store is consulted before the codec: a revoked token reports revoked even
// when it has also expired, which keeps the audit trail honest. A store that
// cannot answer fails closed with core.ErrStoreUnavailable.
func (s *TokenService) Verify(ctx context.Context, token string) (core.Credential, error) {
	revoked, err := s.store.IsRevoked(ctx, token)
	if err != nil {
		return core.Credential{}, err
	}
	if revoked {
		return core.Credential{}, core.ErrRevoked
	}
	return s.codec.Decode(token)
}

// Rotate exchanges a refresh token for a new pair. The old token is retired
// with a first-write revocation, so refresh tokens are single-use: a second
// Rotate on the same token, even one racing this call, fails with
// core.ErrRevoked.
func (s *TokenService) Rotate(ctx context.Context, oldRefresh string) (TokenPair, error) {
	cred, err := s.Verify(ctx, oldRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if cred.Kind != core.TokenKindRefresh {
		return TokenPair{}, core.ErrWrongKind
	}

	first, err := s.store.Revoke(ctx, oldRefresh, time.Until(cred.ExpiresAt))
	if err != nil {
		return TokenPair{}, err
	}
	if !first {
		return TokenPair{}, core.ErrRevoked
	}

	return s.IssuePair(cred.Subject)
}

// Revoke adds a token to the revocation store for its remaining lifetime.
// Idempotent. A token that cannot be decoded, or that has already expired,
// is a no-op: it can never pass Verify anyway.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	cred, err := s.codec.Decode(token)
	if err != nil {
		if errors.Is(err, core.ErrMalformed) || errors.Is(err, core.ErrExpired) {
			return nil
		}
		return err
	}

	ttl := time.Until(cred.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	if _, err := s.store.Revoke(ctx, token, ttl); err != nil {
		return err
	}
	return nil
}
