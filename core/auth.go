package core

import "time"

// TokenKind distinguishes the two credential types the service issues.
type TokenKind string

const (
	// TokenKindAccess is the short-lived credential presented on every request.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh is the long-lived, single-use credential exchanged for
	// a new token pair.
	TokenKindRefresh TokenKind = "refresh"
)

// Valid reports whether k is one of the known token kinds.
func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// Credential is the decoded form of a signed token: who it was minted for,
// what it may be used for, and the window in which it is valid. A credential
// has no stored record while live; its existence is implicit in the signed
// token string.
type Credential struct {
	Subject   string    // user ID the token was issued to
	Kind      TokenKind // access or refresh
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// User is an account record as persisted by the user repository.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
}

// Identity is the resolved result of authenticating a bearer token. It carries
// only what protected handlers need; the full user record stays with the
// repository.
type Identity struct {
	UserID string
	Email  string
	Role   string
}
