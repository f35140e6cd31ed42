package confirmation

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// KeySize is the digest size in bytes; keys are twice as long in hex
const KeySize = 20

// KeyGenerator produces confirmation keys for an email address
type KeyGenerator func(email string) string

// GenerateKey derives an unpredictable key from a random salt and the email.
// The result is KeySize*2 lowercase hex characters.
func GenerateKey(email string) string {
	seed := make([]byte, KeySize)
	if _, err := rand.Read(seed); err != nil {
		panic("confirmation: crypto/rand failed: " + err.Error())
	}
	salt := hex.EncodeToString(seed)

	h, err := blake2b.New(KeySize, nil)
	if err != nil {
		panic("confirmation: blake2b: " + err.Error())
	}
	h.Write([]byte(salt))
	h.Write([]byte(email))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidKeyFormat reports whether key looks like a generated key, ignoring case
func ValidKeyFormat(key string) bool {
	if len(key) != KeySize*2 {
		return false
	}
	for _, c := range key {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
