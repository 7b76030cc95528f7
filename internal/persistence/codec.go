package persistence

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"

	"github.com/vitadek/piratecrew/internal/piraterr"
)

// blob is the on-disk wire format for every persisted file (world, a single
// game, a single tournament): a 32-byte BLAKE3 content hash, a one-byte
// compression flag, then the payload. The hash lets a corrupted or
// truncated file surface as a CodecError instead of a silent wrong parse;
// grounded on start_world.go's hashBLAKE3 content-hash usage,
// generalized from a genesis-state hash into a whole-file integrity check.
const (
	hashSize       = 32
	flagCompressed = 1
	flagPlain      = 0
)

// encodeBlob marshals v to JSON, optionally LZ4-compresses it (teacher's
// compressLZ4/DecompressLZ4 pair), and prefixes a BLAKE3 hash of the
// compressed payload.
func encodeBlob(v any, uncompressed bool) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: marshal")
	}

	flag := byte(flagPlain)
	if !uncompressed {
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: lz4 compress")
		}
		payload = buf.Bytes()
		flag = flagCompressed
	}

	hash := blake3.Sum256(payload)
	out := make([]byte, 0, hashSize+1+len(payload))
	out = append(out, hash[:]...)
	out = append(out, flag)
	out = append(out, payload...)
	return out, nil
}

// decodeBlob verifies the content hash, decompresses if needed, and
// unmarshals into v.
func decodeBlob(data []byte, v any) error {
	if len(data) < hashSize+1 {
		return piraterr.New(piraterr.CodecError, "persistence: blob too short (%d bytes)", len(data))
	}
	wantHash := data[:hashSize]
	flag := data[hashSize]
	payload := data[hashSize+1:]

	gotHash := blake3.Sum256(payload)
	if !bytes.Equal(wantHash, gotHash[:]) {
		return piraterr.New(piraterr.CodecError, "persistence: content hash mismatch, file is corrupted")
	}

	switch flag {
	case flagCompressed:
		r := lz4.NewReader(bytes.NewReader(payload))
		raw, err := io.ReadAll(r)
		if err != nil {
			return piraterr.Wrap(piraterr.CodecError, err, "persistence: lz4 decompress")
		}
		payload = raw
	case flagPlain:
		// payload already raw JSON
	default:
		return piraterr.New(piraterr.CodecError, "persistence: unknown compression flag %d", flag)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: unmarshal")
	}
	return nil
}
