// Package security implements the network-identity keypair and
// peer-message signing: Ed25519 keypair generation, persistence as a hex
// blob, and sign/verify helpers, grounded on start_world.go's
// initIdentity/SignMessage/VerifySignature.
package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/vitadek/piratecrew/internal/ids"
)

// Identity is a node's signing keypair plus the PeerId derived from its
// public key, the "network-identity keypair blob" the World aggregate
// persists.
type Identity struct {
	PeerId     ids.PeerId
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// Generate creates a fresh Ed25519 keypair and derives a PeerId from the
// public key, mirroring initIdentity's first-boot genesis branch.
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("security: generate keypair: %w", err)
	}
	return &Identity{
		PeerId:     peerIdFromPublicKey(pub),
		PrivateKey: priv,
		PublicKey:  pub,
	}, nil
}

func peerIdFromPublicKey(pub ed25519.PublicKey) ids.PeerId {
	var id ids.PeerId
	copy(id[:], pub[:16])
	return id
}

// Blob hex-encodes the private key for persistence (start_world.go's
// priv_key column), the "network-identity keypair blob" field on World.
func (id *Identity) Blob() string {
	return hex.EncodeToString(id.PrivateKey)
}

// FromBlob reconstructs an Identity from a persisted hex-encoded private
// key, mirroring initIdentity's resume branch (private key decoded, public
// key re-derived from it rather than stored separately).
func FromBlob(blob string) (*Identity, error) {
	raw, err := hex.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("security: decode identity blob: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("security: identity blob has wrong length %d", len(raw))
	}
	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)
	return &Identity{
		PeerId:     peerIdFromPublicKey(pub),
		PrivateKey: priv,
		PublicKey:  pub,
	}, nil
}

// Sign signs msg with the identity's private key (start_world.go's
// SignMessage).
func (id *Identity) Sign(msg []byte) []byte {
	return ed25519.Sign(id.PrivateKey, msg)
}

// Verify checks a signature produced by pub over msg (start_world.go's
// VerifySignature). Gossip envelopes carry no signature, so nothing in
// the peer layer calls it.
func Verify(pub ed25519.PublicKey, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
