package ports

import (
	"context"
	"time"
)

// RevocationStore is a key-existence set with per-entry expiry, keyed by the
// raw token string. Once Revoke returns, every subsequent IsRevoked call from
// any caller observes true until at least ttl has elapsed.
type RevocationStore interface {
	// Revoke records the token as revoked for the given lifetime. The
	// returned flag reports whether this call created the entry; a token that
	// was already present leaves its original expiry untouched and returns
	// false. A non-positive ttl is a no-op: the token is already rejected by
	// its own expiry.
	Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error)

	// IsRevoked reports whether the token is currently revoked. A failure to
	// answer within the backend's timeout surfaces as
	// core.ErrStoreUnavailable, never as "not revoked".
	IsRevoked(ctx context.Context, token string) (bool, error)
}
