package ports

import (
	"time"

	"github.com/taskhive/taskhive/core"
)

// Codec encodes and decodes signed, time-bounded credentials. Both operations
// are pure functions of their input and the signing secret; decoding never
// touches a store.
type Codec interface {
	// Encode mints a signed token for the subject with the given kind and
	// lifetime.
	Encode(subject string, kind core.TokenKind, ttl time.Duration) (string, error)

	// Decode verifies the signature and shape of a token and returns its
	// credential. Fails with core.ErrMalformed or core.ErrExpired.
	Decode(token string) (core.Credential, error)
}
