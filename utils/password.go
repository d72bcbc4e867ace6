package utils

import (
	"crypto/rand"
	"math/big"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePassword returns a random lowercase-alphanumeric password of the
// given length, handed to newly registered users in place of email delivery.
func GeneratePassword(length int) string {
	password := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range password {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			password[i] = passwordAlphabet[0]
			continue
		}
		password[i] = passwordAlphabet[n.Int64()]
	}
	return string(password)
}
