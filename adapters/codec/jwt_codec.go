package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// JWTCodec signs and verifies credentials as HS256 JWTs with a single static
// secret. It performs no I/O: decoding is a pure function of the token string
// and the secret, so verification works offline in the common case.
//
// Expiry is inclusive of the instant: a token presented at exactly its exp
// is rejected. No clock-skew leeway is applied.
type JWTCodec struct {
	secret []byte
	ttls   map[core.TokenKind]time.Duration
	now    func() time.Time
}

// Option configures a JWTCodec.
type Option func(*JWTCodec)

// WithTimeFunc overrides the codec's clock. Intended for tests.
func WithTimeFunc(now func() time.Time) Option {
	return func(c *JWTCodec) {
		c.now = now
	}
}

// NewJWTCodec creates a codec. The secret must be non-empty and the access
// lifetime must be shorter than the refresh lifetime; both are checked here
// so misconfiguration fails at startup, never per-call.
func NewJWTCodec(secret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) (*JWTCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("codec: signing secret is empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 || accessTTL >= refreshTTL {
		return nil, fmt.Errorf("codec: invalid token lifetimes: access=%s refresh=%s", accessTTL, refreshTTL)
	}

	c := &JWTCodec{
		secret: secret,
		ttls: map[core.TokenKind]time.Duration{
			core.TokenKindAccess:  accessTTL,
			core.TokenKindRefresh: refreshTTL,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ ports.Codec = (*JWTCodec)(nil)

// Encode mints a signed token for the subject.
func (c *JWTCodec) Encode(subject string, kind core.TokenKind, ttl time.Duration) (string, error) {
	if subject == "" || !kind.Valid() {
		return "", core.ErrMalformed
	}

	claims := tokenClaims{
		Subject:   subject,
		TokenType: string(kind),
		ExpiresAt: jwt.NewNumericDate(c.now().Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature, shape, and expiry of a token and returns its
// credential. IssuedAt is recovered from the expiry and the kind's fixed
// lifetime, preserving expiresAt = issuedAt + ttl(kind).
func (c *JWTCodec) Decode(tokenStr string) (core.Credential, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{}, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.Credential{}, core.ErrExpired
		}
		return core.Credential{}, core.ErrMalformed
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return core.Credential{}, core.ErrMalformed
	}

	if err := checkClaimSet(tokenStr); err != nil {
		return core.Credential{}, err
	}

	kind := core.TokenKind(claims.TokenType)
	if claims.Subject == "" || !kind.Valid() || claims.ExpiresAt == nil {
		return core.Credential{}, core.ErrMalformed
	}

	expiresAt := claims.ExpiresAt.Time
	return core.Credential{
		Subject:   claims.Subject,
		Kind:      kind,
		IssuedAt:  expiresAt.Add(-c.ttls[kind]),
		ExpiresAt: expiresAt,
	}, nil
}

func (c *JWTCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.secret, nil
}

// checkClaimSet enforces the closed claim shape: the payload must contain the
// sub, type, and exp claims and nothing else.
func checkClaimSet(tokenStr string) error {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return core.ErrMalformed
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return core.ErrMalformed
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return core.ErrMalformed
	}

	if len(fields) != 3 {
		return core.ErrMalformed
	}
	for _, name := range []string{"sub", "type", "exp"} {
		if _, ok := fields[name]; !ok {
			return core.ErrMalformed
		}
	}
	return nil
}
