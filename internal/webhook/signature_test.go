package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func signHex(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifier_AcceptsValidSignature(t *testing.T) {
	body := []byte(`{"tx_id":"tx1","amount":10,"timestamp":1700000000}`)
	v := Verifier{Secret: "s3cr3t"}

	if err := v.Verify(body, signHex("s3cr3t", body)); err != nil {
		t.Fatalf("expected valid signature to verify, got %v", err)
	}
}

func TestVerifier_StripsSchemePrefix(t *testing.T) {
	body := []byte(`{"tx_id":"tx1","amount":10,"timestamp":1700000000}`)
	v := Verifier{Secret: "s3cr3t", Prefix: "sha256="}

	if err := v.Verify(body, "sha256="+signHex("s3cr3t", body)); err != nil {
		t.Fatalf("expected prefixed signature to verify, got %v", err)
	}
	// bare signatures still pass when a prefix is configured
	if err := v.Verify(body, signHex("s3cr3t", body)); err != nil {
		t.Fatalf("expected bare signature to verify, got %v", err)
	}
}

func TestVerifier_RejectsMutatedBody(t *testing.T) {
	body := []byte(`{"tx_id":"tx1","amount":10,"timestamp":1700000000}`)
	sig := signHex("s3cr3t", body)
	mutated := []byte(`{"tx_id":"tx1","amount":20,"timestamp":1700000000}`)
	v := Verifier{Secret: "s3cr3t"}

	if err := v.Verify(mutated, sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for mutated body, got %v", err)
	}
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	body := []byte(`{"tx_id":"tx1","amount":10}`)
	v := Verifier{Secret: "s3cr3t"}

	if err := v.Verify(body, signHex("wrong_secret", body)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for wrong secret, got %v", err)
	}
}

func TestVerifier_RejectsNonHexSignature(t *testing.T) {
	v := Verifier{Secret: "s3cr3t"}

	if err := v.Verify([]byte("{}"), "not-hex-zz"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for garbage hex, got %v", err)
	}
}

func TestVerifier_RejectsTruncatedSignature(t *testing.T) {
	body := []byte(`{"tx_id":"tx1"}`)
	sig := signHex("s3cr3t", body)
	v := Verifier{Secret: "s3cr3t"}

	if err := v.Verify(body, sig[:32]); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for truncated signature, got %v", err)
	}
}

func TestVerifier_RejectsEmptySignature(t *testing.T) {
	v := Verifier{Secret: "s3cr3t", Prefix: "sha256="}

	for _, sig := range []string{"", "   ", "sha256="} {
		if err := v.Verify([]byte("{}"), sig); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature for signature %q, got %v", sig, err)
		}
	}
}

func TestVerifier_FailsClosedWithoutSecret(t *testing.T) {
	body := []byte(`{"tx_id":"tx1"}`)

	for _, secret := range []string{"", "   "} {
		v := Verifier{Secret: secret}
		// even a signature computed over the empty secret must not pass
		if err := v.Verify(body, signHex(secret, body)); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected unconfigured secret to fail closed, got %v", err)
		}
	}
}
