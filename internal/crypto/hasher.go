package crypto

import "context"

// PasswordHasher hashes and verifies account passwords and driver PINs.
type PasswordHasher interface {
	HashPassword(ctx context.Context, password string) (string, error)
	VerifyPassword(ctx context.Context, password, encodedHash string) (bool, error)
}
