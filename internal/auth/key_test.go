package auth

import "testing"

func TestVerifyMonitoringKey_Plaintext(t *testing.T) {
	if !VerifyMonitoringKey("secret-key", "secret-key", "") {
		t.Fatalf("expected matching plaintext to verify")
	}
	if VerifyMonitoringKey("wrong", "secret-key", "") {
		t.Fatalf("expected mismatched plaintext to fail")
	}
}

func TestVerifyMonitoringKey_BcryptHash(t *testing.T) {
	hash, err := HashMonitoringKey("secret-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !VerifyMonitoringKey("secret-key", "", hash) {
		t.Fatalf("expected key to verify against its hash")
	}
	if VerifyMonitoringKey("wrong", "", hash) {
		t.Fatalf("expected wrong key to fail against hash")
	}
}

func TestVerifyMonitoringKey_HashTakesPrecedence(t *testing.T) {
	hash, err := HashMonitoringKey("hashed-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// the plaintext setting is ignored once a hash is configured
	if VerifyMonitoringKey("plain-key", "plain-key", hash) {
		t.Fatalf("expected plaintext match to be ignored when a hash is set")
	}
	if !VerifyMonitoringKey("hashed-key", "plain-key", hash) {
		t.Fatalf("expected hash match to verify")
	}
}

func TestVerifyMonitoringKey_FailsClosed(t *testing.T) {
	if VerifyMonitoringKey("anything", "", "") {
		t.Fatalf("expected failure with no credential configured")
	}
	if VerifyMonitoringKey("", "secret-key", "") {
		t.Fatalf("expected empty presented key to fail")
	}
	if VerifyMonitoringKey("", "", "") {
		t.Fatalf("expected all-empty to fail")
	}
}
