package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashMonitoringKey produces a bcrypt hash suitable for MONITORING_KEY_HASH.
func HashMonitoringKey(key string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(b), err
}

// VerifyMonitoringKey compares a presented key against the configured
// credential: the bcrypt hash when one is set, otherwise the plaintext key
// in constant time. With neither configured every attempt fails.
func VerifyMonitoringKey(presented, plain, hash string) bool {
	if presented == "" {
		return false
	}
	if hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
	}
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(plain)) == 1
}
