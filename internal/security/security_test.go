package security

import "testing"

func TestGenerateSignVerifyRoundtrip(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	msg := []byte("hello crew")
	sig := id.Sign(msg)
	if !Verify(id.PublicKey, msg, sig) {
		t.Fatalf("expected signature to verify")
	}
	if Verify(id.PublicKey, []byte("tampered"), sig) {
		t.Fatalf("expected signature over different message to fail")
	}
}

func TestBlobRoundtrip(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	blob := id.Blob()
	restored, err := FromBlob(blob)
	if err != nil {
		t.Fatalf("FromBlob: %v", err)
	}
	if restored.PeerId != id.PeerId {
		t.Fatalf("expected PeerId to survive roundtrip")
	}
	msg := []byte("resume after restart")
	if !Verify(restored.PublicKey, msg, id.Sign(msg)) {
		t.Fatalf("expected restored identity to verify signatures from original key")
	}
}

func TestFromBlobRejectsBadLength(t *testing.T) {
	if _, err := FromBlob("deadbeef"); err == nil {
		t.Fatalf("expected error for short blob")
	}
}
