// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	CredentialPrefix = "qr_"
	credentialBytes  = 32
)

// GenerateCredential returns a fresh API key: the qr_ prefix followed by 256
// bits from crypto/rand, hex encoded.
func GenerateCredential() (string, error) {
	buf := make([]byte, credentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return CredentialPrefix + hex.EncodeToString(buf), nil
}

// LooksLikeCredential rejects values that could never have been issued so
// lookups for garbage keys skip the database.
func LooksLikeCredential(s string) bool {
	if !strings.HasPrefix(s, CredentialPrefix) {
		return false
	}
	body := s[len(CredentialPrefix):]
	if len(body) != credentialBytes*2 {
		return false
	}
	_, err := hex.DecodeString(body)
	return err == nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func CompareTokenHash(token, hash string) bool {
	tokenHash := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(hash)) == 1
}
