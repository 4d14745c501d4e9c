package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Verifier checks HMAC-SHA256 webhook signatures. Every failure path returns
// ErrInvalidSignature: the caller learns that verification failed, not why.
type Verifier struct {
	Secret string
	Prefix string // optional scheme prefix to strip, e.g. "sha256="
}

// Verify compares the presented hex signature against the MAC of payload.
// An unconfigured secret fails closed.
func (v Verifier) Verify(payload []byte, signature string) error {
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return ErrInvalidSignature
	}
	sig := strings.TrimSpace(signature)
	if v.Prefix != "" {
		sig = strings.TrimPrefix(sig, v.Prefix)
	}
	if sig == "" {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	expected := mac.Sum(nil)

	decoded, err := hex.DecodeString(sig)
	if err != nil {
		return ErrInvalidSignature
	}
	if subtle.ConstantTimeCompare(decoded, expected) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
