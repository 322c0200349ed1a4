package storage

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// codec returns the shared zstd encoder and decoder; EncodeAll and
// DecodeAll are safe for concurrent use.
func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return encoder, decoder, codecErr
}

func compressCode(code string) ([]byte, error) {
	enc, _, err := codec()
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return enc.EncodeAll([]byte(code), nil), nil
}

func decompressCode(blob []byte) (string, error) {
	_, dec, err := codec()
	if err != nil {
		return "", fmt.Errorf("zstd: %w", err)
	}
	out, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decompress code: %w", err)
	}
	return string(out), nil
}

// Fingerprint identifies a submission's code independent of the learner:
// blake2b-256 over the language tag and the source.
func Fingerprint(language, code string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}
