package ports

// PasswordHasher is the one-way hash-and-verify capability used for stored
// passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
