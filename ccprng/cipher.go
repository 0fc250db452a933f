// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package ccprng implements cipher-counter PRNGs: a block or stream cipher
// run over an incrementing counter, keyed by a hash of the caller's seed
// bytes. Two variants are exposed, NewAES and NewChaCha, sharing the same
// state machine and differing only in block size, batching, and the
// key-derivation hash.
package ccprng

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/sixafter/randcore"
)

// cipherEngine produces one blockSize-byte keystream block from a
// blockSize-byte counter value. AES implements this directly via
// cipher.Block.Encrypt; ChaCha20 implements it by repositioning the
// stream's internal block counter and draining one block of keystream.
type cipherEngine interface {
	encryptBlock(counter, out []byte)
}

// algorithm captures the constants that distinguish the AES and ChaCha
// cipher-counter variants: key lengths, counter block size, and blocks
// buffered per refill.
type algorithm struct {
	name         string
	blockSize    int // B
	blocksAtOnce int
	minSeed      int
	keyLenFor    func(seedLen int) int
	newHash      func() hash.Hash
	newEngine    func(key []byte) (cipherEngine, error)
}

func (a algorithm) maxSeedLen() int {
	return a.keyLenFor(1<<31-1) + a.blockSize
}

// CipherCounterPrng is a cipher-in-counter-mode PRNG.
type CipherCounterPrng struct {
	*randcore.Base

	algo algorithm
	cfg  Config

	ctr     counter
	buffer  []byte
	index   int
	engine  cipherEngine
	keyLen  int
	rawSeed []byte
}

func newCipherCounterPrng(algo algorithm, seed []byte, opts []Option) (*CipherCounterPrng, error) {
	c := &CipherCounterPrng{algo: algo, cfg: newConfig(opts)}
	ops := randcore.Ops{
		ClassName:     "ccprng." + algo.name,
		NextBits:      c.nextBits,
		SetSeed:       c.setSeed,
		Seed:          c.seed,
		NewSeedLength: c.newSeedLength,
		DumpFields:    c.dumpFields,
	}
	base, err := randcore.NewBase(ops, seed)
	if err != nil {
		return nil, err
	}
	c.Base = base
	c.Base.BindSelf(c)
	return c, nil
}

// setSeed derives a key and initial counter from seed. Called by
// randcore.Base while holding its lock.
func (c *CipherCounterPrng) setSeed(seed []byte) error {
	l := len(seed)
	if l < c.algo.minSeed || l > c.algo.maxSeedLen() {
		return fmt.Errorf("%w: %s seed must be %d-%d bytes, got %d",
			randcore.ErrInvalidSeedLength, c.algo.name, c.algo.minSeed, c.algo.maxSeedLen(), l)
	}
	k := c.algo.keyLenFor(l)

	h := c.algo.newHash()
	h.Write(seed)
	digest := h.Sum(nil)

	key := append([]byte(nil), digest[:k]...)
	c.cfg.applyPersonalization(key)

	engine, err := c.algo.newEngine(key)
	if err != nil {
		return fmt.Errorf("%w: %v", randcore.ErrSeedSource, err)
	}

	ctr := make(counter, c.algo.blockSize)
	if l > k {
		ctr.set(seed[k:])
	}

	c.engine = engine
	c.ctr = ctr
	c.buffer = make([]byte, c.algo.blockSize*c.algo.blocksAtOnce)
	c.index = len(c.buffer) // force refill on next output
	c.keyLen = k
	c.rawSeed = append([]byte(nil), seed...)
	return nil
}

func (c *CipherCounterPrng) seed() []byte {
	return append([]byte(nil), c.rawSeed...)
}

// newSeedLength returns the current key length plus one counter block,
// capped at the algorithm's maximum accepted seed length.
func (c *CipherCounterPrng) newSeedLength() int {
	n := c.keyLen + c.algo.blockSize
	if max := c.algo.maxSeedLen(); n > max {
		n = max
	}
	return n
}

func (c *CipherCounterPrng) dumpFields() string {
	return fmt.Sprintf(" algo=%s block=%d keyLen=%d index=%d ctr=%s",
		c.algo.name, c.algo.blockSize, c.keyLen, c.index, hex.EncodeToString(c.ctr))
}

// refill regenerates the output buffer from the current counter, advancing
// the counter by blocksAtOnce.
func (c *CipherCounterPrng) refill() {
	for c.index >= len(c.buffer) {
		in := make([]byte, c.algo.blockSize)
		for i := 0; i < c.algo.blocksAtOnce; i++ {
			copy(in, c.ctr)
			c.ctr.incr()
			c.engine.encryptBlock(in, c.buffer[i*c.algo.blockSize:(i+1)*c.algo.blockSize])
		}
		c.index = 0
	}
}

// nextBits reads 4 bytes at index, refilling as needed, composes them
// big-endian, and shifts down to k bits. Called by randcore.Base while
// holding its lock.
func (c *CipherCounterPrng) nextBits(k int) uint32 {
	if c.index+4 > len(c.buffer) {
		c.refill()
	}
	w := binary.BigEndian.Uint32(c.buffer[c.index : c.index+4])
	c.index += 4
	return w >> uint(32-k)
}

// String implements fmt.Stringer for debug printing, delegating to Dump.
func (c *CipherCounterPrng) String() string {
	return c.Dump()
}
