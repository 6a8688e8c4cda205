package security

import (
	"crypto/rand"
	"math/big"
)

const (
	userIDLength   = 10
	passwordLength = 10

	digits       = "0123456789"
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateUserID returns the external-facing opaque identifier: a
// random 10-digit numeric string. Collision probability at this length
// is accepted as negligible.
func GenerateUserID() string {
	return randomString(digits, userIDLength)
}

// GeneratePassword returns a random 10-character alphanumeric password
// intended for one-time out-of-band delivery.
func GeneratePassword() string {
	return randomString(alphanumeric, passwordLength)
}

func randomString(alphabet string, length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is
			// broken; nothing sensible to return in that case.
			panic(err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}
