package usecase

import (
	"crypto/rand"
	"io"
)

// generateInviteToken creates a random invitation token of the given length
// from an upper-case alphanumeric alphabet. Uniqueness is enforced by the
// store's unique index, not by the generator's entropy.
func generateInviteToken(length int) (string, error) {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	buffer := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}
	return string(buffer), nil
}
