package ports

// PasswordHasher is the one-way salted hash used for credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Compare returns nil when plaintext matches hash.
	Compare(hash, plaintext string) error
}
