package security

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken returns a cryptographically random opaque identifier (256 bits,
// 64-character hex string). Used for both login-attempt state values and
// session tokens; neither carries any decodable payload.
func NewToken() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(randomBytes), nil
}
