// Package rng implements the engine's randomness component.
//
// Deterministic operations (match-engine turns, tournament brackets, galaxy
// efficiency seeding) derive their seed by mixing two 64-bit words with a
// tick value and drive a ChaCha20 keystream from the result, so that two
// nodes computing the same (id, tick) pair observe bit-identical output —
// this is the Go equivalent of the original engine's rand_chacha::ChaCha8Rng
// (see original_source/src/core/player.rs), promoted from an indirect
// dependency of the pack (golang.org/x/crypto, pulled in transitively by
// nicoberrocal-galaxyCore's go.mod) to a direct one.
//
// Non-deterministic operations (free-pirate name generation, asteroid
// naming) seed from OS entropy via crypto/rand and never touch the
// deterministic path.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"

	"golang.org/x/crypto/chacha20"
	"lukechampine.com/blake3"
)

// Rand wraps math/rand.Rand so callers get the familiar Intn/Float64/
// Shuffle/Perm surface on top of a ChaCha20 keystream source.
type Rand struct {
	*mrand.Rand
}

// chachaSource adapts a chacha20.Cipher keystream to math/rand.Source64.
type chachaSource struct {
	cipher *chacha20.Cipher
	zeros  [8]byte
}

func (s *chachaSource) Uint64() uint64 {
	var out [8]byte
	s.cipher.XORKeyStream(out[:], s.zeros[:])
	return binary.LittleEndian.Uint64(out[:])
}

func (s *chachaSource) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

func (s *chachaSource) Seed(int64) {
	// Re-seeding a keystream makes no sense for our use; deterministic
	// sources are always constructed fresh via Deterministic below.
}

// keyAndNonce mixes the two id words and the tick into a 32-byte ChaCha20
// key and a 12-byte nonce via BLAKE3, so seeds for distinct (id, tick) pairs
// are unrelated even though the mixing function itself is simple.
func keyAndNonce(hi, lo uint64, tick int64) (key [32]byte, nonce [12]byte) {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], hi)
	binary.LittleEndian.PutUint64(buf[8:16], lo)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(tick))

	key = blake3.Sum256(buf[:])

	nonceHash := blake3.Sum256(append([]byte("pirate-rng-nonce"), buf[:]...))
	copy(nonce[:], nonceHash[:12])
	return key, nonce
}

// Deterministic constructs a reproducible RNG from two 64-bit id words and a
// tick value. Any two processes calling Deterministic with the same
// arguments get byte-identical streams of Intn/Float64/Shuffle output. This
// underlies match-engine turn resolution (seed = game_id ++ starting_at ++
// timer) and tournament bracket shuffles (seed = tournament_id ++ tick).
func Deterministic(hi, lo uint64, tick int64) *Rand {
	key, nonce := keyAndNonce(hi, lo, tick)
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// Key/nonce are fixed-size local arrays; this can only fail if the
		// chacha20 package's size constants changed underneath us.
		panic("rng: chacha20 cipher construction failed: " + err.Error())
	}
	src := &chachaSource{cipher: cipher}
	return &Rand{Rand: mrand.New(src)}
}

// DeterministicFromWords is a convenience wrapper for callers holding an
// ids.*.Words()-shaped (hi, lo) pair, e.g. hi, lo := gameID.Words() then
// rng.DeterministicFromWords([2]uint64{hi, lo}, tick).
func DeterministicFromWords(words [2]uint64, tick int64) *Rand {
	return Deterministic(words[0], words[1], tick)
}

// NonDeterministic returns an RNG seeded from OS entropy, for paths spec
// §4.3 explicitly carves out as not needing cross-node agreement (free
// pirate generation flavor text, asteroid naming).
func NonDeterministic() *Rand {
	var seedBytes [8]byte
	if _, err := rand.Read(seedBytes[:]); err != nil {
		// crypto/rand.Read failing means the OS entropy source is broken;
		// fall back to fallbackSeed (one more crypto/rand draw, else the
		// constant 1) rather than crash a non-critical cosmetic path.
		return &Rand{Rand: mrand.New(mrand.NewSource(fallbackSeed()))}
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return &Rand{Rand: mrand.New(mrand.NewSource(seed))}
}

func fallbackSeed() int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<62))
	if n == nil {
		return 1
	}
	return n.Int64()
}
