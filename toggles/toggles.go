// Package toggles decodes the TICTOC_TOGGLES environment variable into
// an immutable set of eight boolean feature flags.
//
// The variable is an 8-character string of '0'/'1' characters. Index 0
// is the least-significant (rightmost) character, so "10000000" sets
// flag 7 and leaves flags 0-6 unset. Malformed input falls back to
// all-false with a warning rather than failing the process.
//
// Parse the value once at startup and pass the resulting Set through
// explicitly; nothing in this package re-reads the environment.
package toggles

import (
	"log/slog"
	"os"
)

// EnvVar is the environment variable holding the toggle bit-string.
const EnvVar = "TICTOC_TOGGLES"

// Count is the fixed number of toggle flags.
const Count = 8

// Set is an immutable collection of eight feature flags.
type Set struct {
	flags [Count]bool
}

// Parse decodes an 8-character bit-string into a Set. Index 0 of the
// Set corresponds to the rightmost character. Any string that is not
// exactly eight '0'/'1' characters yields the zero Set.
func Parse(s string) Set {
	var set Set
	if len(s) != Count {
		if s != "" {
			slog.Warn("ignoring malformed toggle string", "value", s)
		}
		return set
	}
	for i := 0; i < Count; i++ {
		switch s[Count-1-i] {
		case '1':
			set.flags[i] = true
		case '0':
		default:
			slog.Warn("ignoring malformed toggle string", "value", s)
			return Set{}
		}
	}
	return set
}

// FromEnv parses the TICTOC_TOGGLES environment variable. An unset or
// malformed variable yields the zero Set.
func FromEnv() Set {
	return Parse(os.Getenv(EnvVar))
}

// Enabled reports whether flag i is set. Out-of-range indices report
// false.
func (s Set) Enabled(i int) bool {
	if i < 0 || i >= Count {
		return false
	}
	return s.flags[i]
}

// All returns the flags as a slice, index 0 first.
func (s Set) All() []bool {
	out := make([]bool, Count)
	copy(out, s.flags[:])
	return out
}
