package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/adapters/codec"
	"github.com/taskhive/taskhive/adapters/hash"
	"github.com/taskhive/taskhive/adapters/store"
	"github.com/taskhive/taskhive/core"
)

// memUserRepo is an in-memory ports.UserRepository for service tests.
type memUserRepo struct {
	byID    map[string]*core.User
	byEmail map[string]*core.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[string]*core.User),
		byEmail: make(map[string]*core.User),
	}
}

func (r *memUserRepo) Create(ctx context.Context, user *core.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return core.ErrEmailTaken
	}
	u := *user
	r.byID[u.ID] = &u
	r.byEmail[u.Email] = &u
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*core.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, ok := r.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// recordingPublisher remembers every logout event it is handed.
type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) PublishLogout(ctx context.Context, subject string, kind core.TokenKind) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

type authFixture struct {
	auth   *AuthService
	tokens *TokenService
	users  *memUserRepo
	events *recordingPublisher
	clock  *testClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := newTestClock()
	c, err := codec.NewJWTCodec([]byte("test-secret"), testAccessTTL, testRefreshTTL, codec.WithTimeFunc(clock.Now))
	require.NoError(t, err)

	tokens := NewTokenService(c, store.NewMemoryStore(0), testAccessTTL, testRefreshTTL)
	users := newMemUserRepo()
	events := &recordingPublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := NewAuthService(tokens, users, hash.NewBcryptHasher(bcrypt.MinCost), events, log)

	return &authFixture{auth: auth, tokens: tokens, users: users, events: events, clock: clock}
}

func (f *authFixture) register(t *testing.T, email, password string) *core.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), email, password, "Test User")
	require.NoError(t, err)
	return user
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.register(t, "ada@example.com", "hunter22")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "member", user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	pair, err := f.auth.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	id, err := f.auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com", "hunter22")
	_, err := f.auth.Register(context.Background(), "ada@example.com", "other-pass", "Imposter")
	assert.ErrorIs(t, err, core.ErrEmailTaken)
}

func TestAuthService_Login_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "ada@example.com", "hunter22")

	_, err := f.auth.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	// Unknown accounts and wrong passwords are indistinguishable.
	_, err = f.auth.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestAuthService_Authenticate_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "ada@example.com", "hunter22")

	_, err := f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, core.ErrMalformed)

	// A refresh token cannot pass the access gate.
	refresh, err := f.tokens.IssueRefresh(user.ID)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, refresh)
	assert.ErrorIs(t, err, core.ErrWrongKind)

	// A validly signed token whose subject no longer resolves is rejected.
	ghost, err := f.tokens.IssueAccess("00000000-0000-0000-0000-00000000dead")
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, core.ErrUnknownSubject)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "ada@example.com", "hunter22")

	pair, err := f.auth.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, pair.RefreshToken))
	require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, pair.RefreshToken), "repeated logout must not fail")

	_, err = f.auth.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrRevoked)
	_, err = f.tokens.Verify(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrRevoked)
}

func TestAuthService_Logout_PublishesEvent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "ada@example.com", "hunter22")

	pair, err := f.auth.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, ""))

	require.Len(t, f.events.subjects, 1)
	assert.Equal(t, user.ID, f.events.subjects[0])
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "ada@example.com", "hunter22")

	err := f.auth.ChangePassword(ctx, user.ID, "wrong-old", "new-password")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	require.NoError(t, f.auth.ChangePassword(ctx, user.ID, "hunter22", "new-password"))

	_, err = f.auth.Login(ctx, "ada@example.com", "hunter22")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "ada@example.com", "new-password")
	assert.NoError(t, err)
}

// TestAuthService_SessionLifecycle walks a full session: login, refresh
// rotation, reuse of the consumed refresh token, logout, and finally natural
// expiry of the one access token that was never revoked.
func TestAuthService_SessionLifecycle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "ada@example.com", "hunter22")

	first, err := f.auth.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	second, err := f.auth.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-away refresh token is single-use.
	_, err = f.tokens.Verify(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, core.ErrRevoked)
	_, err = f.auth.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, core.ErrRevoked)

	// The new pair works until logout.
	_, err = f.auth.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, second.AccessToken, second.RefreshToken))
	_, err = f.auth.Authenticate(ctx, second.AccessToken)
	assert.ErrorIs(t, err, core.ErrRevoked)

	// The original access token was never revoked; it simply ages out.
	f.clock.Advance(testAccessTTL + time.Second)
	_, err = f.auth.Authenticate(ctx, first.AccessToken)
	assert.ErrorIs(t, err, core.ErrExpired)
}
