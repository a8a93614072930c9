package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how the pool advances each logic tick.
type Mode uint8

const (
	ModeReference Mode = iota // local physics
	ModeLearned               // external predictor via the bridge
)

func (m Mode) String() string {
	if m == ModeLearned {
		return "NEURAL"
	}
	return "CPU"
}

// ParseMode reads the interactive driver's mode selector. Integers follow
// the positional-argument convention: 0 is reference, anything else learned.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModeReference, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n == 0 {
			return ModeReference, nil
		}
		return ModeLearned, nil
	}
	switch strings.ToLower(s) {
	case "cpu", "reference":
		return ModeReference, nil
	case "neural", "learned":
		return ModeLearned, nil
	}
	return ModeReference, fmt.Errorf("unknown mode %q", s)
}
