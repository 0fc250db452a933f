// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package ccprng

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"github.com/sixafter/randcore"
)

// aesBlockEngine wraps a crypto/aes cipher.Block, one AES block (16 bytes)
// per encryptBlock call.
type aesBlockEngine struct {
	block cipher.Block
}

func (e aesBlockEngine) encryptBlock(counter, out []byte) {
	e.block.Encrypt(out, counter)
}

// aesKeyLenFor mirrors AES's supported 128/256-bit key sizes: a seed
// shorter than 32 bytes yields a 16-byte key, otherwise a 32-byte key.
func aesKeyLenFor(seedLen int) int {
	if seedLen < 32 {
		return 16
	}
	return 32
}

var aesAlgorithm = algorithm{
	name:         "AES",
	blockSize:    aes.BlockSize, // 16
	blocksAtOnce: 16,
	minSeed:      16,
	keyLenFor:    aesKeyLenFor,
	newHash:      sha256.New,
	newEngine: func(key []byte) (cipherEngine, error) {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("ccprng: aes key setup: %w", err)
		}
		return aesBlockEngine{block: block}, nil
	},
}

// NewAES constructs an AES-CTR cipher-counter PRNG. seed must be 16-48
// bytes: the first 16 or 32 bytes (by seed length) key the cipher via
// SHA-256(seed), and any remaining bytes seed the counter.
func NewAES(seed []byte, opts ...Option) (*CipherCounterPrng, error) {
	return newCipherCounterPrng(aesAlgorithm, seed, opts)
}

var _ randcore.Prng = (*CipherCounterPrng)(nil)
