// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package ccprng

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/sha3"
)

// chachaBlockEngine wraps a golang.org/x/crypto/chacha20.Cipher. ChaCha20
// has no notion of encrypting an arbitrary counter value as plaintext the
// way AES-CTR does; instead its internal block counter is repositioned via
// SetCounter and one 64-byte keystream block is drained per call. The low
// 4 bytes of the supplied counter select the block position, matching
// chacha20's own uint32 block counter.
type chachaBlockEngine struct {
	stream *chacha20.Cipher
	zero   [chacha20.BlockSize]byte
}

func (e *chachaBlockEngine) encryptBlock(counter, out []byte) {
	e.stream.SetCounter(binary.LittleEndian.Uint32(counter[:4]))
	e.stream.XORKeyStream(out, e.zero[:])
}

// chachaKeyLenFor always resolves to chacha20.KeySize: unlike AES,
// golang.org/x/crypto/chacha20 hard-requires a 32-byte key (see its
// KeySize constant), so there is no 16-byte variant to select between. The
// seed's accepted length floor (16 bytes) is preserved regardless; shorter
// seeds still yield a full 32-byte key because SHA3-256's output length
// does not depend on its input length.
func chachaKeyLenFor(int) int {
	return chacha20.KeySize
}

var chachaNonce = [chacha20.NonceSize]byte{} // zero nonce; the key is unique per seed

var chachaAlgorithm = algorithm{
	name:         "ChaCha",
	blockSize:    chacha20.BlockSize, // 64
	blocksAtOnce: 1,
	minSeed:      16,
	keyLenFor:    chachaKeyLenFor,
	newHash:      sha3.New256,
	newEngine: func(key []byte) (cipherEngine, error) {
		stream, err := chacha20.NewUnauthenticatedCipher(key, chachaNonce[:])
		if err != nil {
			return nil, fmt.Errorf("ccprng: chacha20 key setup: %w", err)
		}
		return &chachaBlockEngine{stream: stream}, nil
	},
}

// NewChaCha constructs a ChaCha20-counter cipher-counter PRNG. seed must
// be 16-96 bytes: the seed is hashed with SHA3-256 to derive a 32-byte
// key, and any bytes beyond the key seed the counter.
func NewChaCha(seed []byte, opts ...Option) (*CipherCounterPrng, error) {
	return newCipherCounterPrng(chachaAlgorithm, seed, opts)
}
