package core

import "errors"

var (
	// ErrMalformed is returned when a token cannot be parsed, its signature is
	// invalid, or its claims are missing or mis-shaped.
	ErrMalformed = errors.New("token is malformed")

	// ErrExpired is returned when a token is past its expiry instant.
	ErrExpired = errors.New("token has expired")

	// ErrRevoked is returned when a token is present in the revocation store.
	ErrRevoked = errors.New("token has been revoked")

	// ErrWrongKind is returned when a token of one kind is presented where the
	// other kind is required.
	ErrWrongKind = errors.New("wrong token kind")

	// ErrUnknownSubject is returned when a token decodes cleanly but its
	// subject matches no user record.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrStoreUnavailable is returned when the revocation store cannot be
	// reached within its timeout. Verification fails closed on this error.
	ErrStoreUnavailable = errors.New("revocation store unavailable")

	// ErrInvalidCredentials is returned on a login attempt with an unknown
	// email or a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus is returned when a task status outside the known set
	// is requested.
	ErrInvalidStatus = errors.New("invalid task status")
)
