package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"
)

// EntropySeed reads a seed from the operating system's entropy source.
func EntropySeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("reading entropy: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}

// seedOrFallback returns an entropy seed, or a clock-derived one with a
// warning if the entropy source fails.
func seedOrFallback(source func() (int64, error)) int64 {
	seed, err := source()
	if err == nil {
		return seed
	}
	fallback := time.Now().UnixNano()
	slog.Warn("entropy source failed, using time-based seed", "error", err, "seed", fallback)
	return fallback
}

// ResolveSeed returns seed, or an entropy seed when seed is zero.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return seedOrFallback(EntropySeed)
}
