package codec

import "github.com/golang-jwt/jwt/v5"

// tokenClaims is the fixed wire shape of a credential: exactly the subject,
// the token kind, and the expiry. Decoding rejects payloads with any other
// shape, so the claim set is closed rather than an open map.
type tokenClaims struct {
	Subject   string           `json:"sub"`
	TokenType string           `json:"type"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c tokenClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c tokenClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c tokenClaims) GetIssuer() (string, error)                   { return "", nil }
func (c tokenClaims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c tokenClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
