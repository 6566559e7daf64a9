package codec

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/core"
)

const (
	testAccessTTL  = 30 * time.Minute
	testRefreshTTL = 7 * 24 * time.Hour
)

var testSecret = []byte("test-secret")

func newTestCodec(t *testing.T, opts ...Option) *JWTCodec {
	t.Helper()
	c, err := NewJWTCodec(testSecret, testAccessTTL, testRefreshTTL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewJWTCodec_Misconfigured(t *testing.T) {
	_, err := NewJWTCodec(nil, testAccessTTL, testRefreshTTL)
	assert.Error(t, err, "empty secret must fail at construction")

	_, err = NewJWTCodec(testSecret, testRefreshTTL, testAccessTTL)
	assert.Error(t, err, "access lifetime must be shorter than refresh lifetime")
}

func TestRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	cases := []struct {
		kind core.TokenKind
		ttl  time.Duration
	}{
		{core.TokenKindAccess, testAccessTTL},
		{core.TokenKindRefresh, testRefreshTTL},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			token, err := c.Encode("user-123", tc.kind, tc.ttl)
			require.NoError(t, err)

			cred, err := c.Decode(token)
			require.NoError(t, err)

			assert.Equal(t, "user-123", cred.Subject)
			assert.Equal(t, tc.kind, cred.Kind)
			assert.Equal(t, tc.ttl, cred.ExpiresAt.Sub(cred.IssuedAt))
		})
	}
}

func TestDecode_Expired(t *testing.T) {
	c := newTestCodec(t)

	token, err := c.Encode("u1", core.TokenKindAccess, -time.Second)
	require.NoError(t, err)

	_, err = c.Decode(token)
	assert.ErrorIs(t, err, core.ErrExpired)
}

func TestDecode_ExpiryIsInclusive(t *testing.T) {
	current := time.Now().Truncate(time.Second)
	c := newTestCodec(t, WithTimeFunc(func() time.Time { return current }))

	token, err := c.Encode("u1", core.TokenKindAccess, testAccessTTL)
	require.NoError(t, err)

	// One second short of expiry: still valid.
	current = current.Add(testAccessTTL - time.Second)
	_, err = c.Decode(token)
	require.NoError(t, err)

	// Exactly at expiry: rejected.
	current = current.Add(time.Second)
	_, err = c.Decode(token)
	assert.ErrorIs(t, err, core.ErrExpired)
}

func TestDecode_WrongSecret(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewJWTCodec([]byte("other-secret"), testAccessTTL, testRefreshTTL)
	require.NoError(t, err)

	token, err := c.Encode("u1", core.TokenKindAccess, testAccessTTL)
	require.NoError(t, err)

	_, err = other.Decode(token)
	assert.ErrorIs(t, err, core.ErrMalformed)
}

func TestDecode_Garbage(t *testing.T) {
	c := newTestCodec(t)

	for _, s := range []string{"", "not.a.jwt", "a.b", "a.b.c.d"} {
		_, err := c.Decode(s)
		assert.ErrorIs(t, err, core.ErrMalformed, "input %q", s)
	}
}

// signMap produces a token with an arbitrary claim set, bypassing the codec's
// fixed shape, to exercise decode strictness.
func signMap(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func TestDecode_StrictClaimShape(t *testing.T) {
	c := newTestCodec(t)
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]jwt.MapClaims{
		"extra claim":   {"sub": "u1", "type": "access", "exp": exp, "role": "admin"},
		"missing type":  {"sub": "u1", "exp": exp},
		"missing sub":   {"type": "access", "exp": exp},
		"unknown kind":  {"sub": "u1", "type": "session", "exp": exp},
		"empty subject": {"sub": "", "type": "access", "exp": exp},
	}

	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(signMap(t, claims))
			assert.ErrorIs(t, err, core.ErrMalformed)
		})
	}
}

func TestDecode_RejectsUnsignedAlg(t *testing.T) {
	c := newTestCodec(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1", "type": "access", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Decode(token)
	assert.ErrorIs(t, err, core.ErrMalformed)
}
