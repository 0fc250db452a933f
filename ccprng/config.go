// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package ccprng

// Config holds the tunable, non-secret parameters of a CipherCounterPrng.
// Following the Config/Option convention used throughout this module's
// lineage, the zero value is valid and selects documented defaults.
type Config struct {
	// Personalization is optional domain-separation material XORed into
	// the hashed seed before it is used as the cipher key, mirroring the
	// personalization-string handling of NIST SP 800-90A CTR_DRBG
	// implementations in this family. Nil means no personalization.
	Personalization []byte
}

// Option customizes a Config.
type Option func(*Config)

// WithPersonalization sets domain-separation material XORed into the
// hashed seed.
func WithPersonalization(p []byte) Option {
	return func(c *Config) { c.Personalization = append([]byte(nil), p...) }
}

func newConfig(opts []Option) Config {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c Config) applyPersonalization(key []byte) {
	if len(c.Personalization) == 0 {
		return
	}
	for i := range key {
		key[i] ^= c.Personalization[i%len(c.Personalization)]
	}
}
