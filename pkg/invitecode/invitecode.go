// Package invitecode generates and formats the short human-typeable codes
// used to invite dispatchers and drivers into a company.
package invitecode

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultLength is the canonical code length after normalization.
const DefaultLength = 8

// DefaultMaxRetries bounds collision retries in GenerateUnique.
const DefaultMaxRetries = 10

var alphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// Style selects a display rendering for Format.
type Style string

const (
	// StyleDashed splits the code at its midpoint: XXXX-XXXX for length 8.
	StyleDashed Style = "dashed"
	// StylePlain strips separators and uppercases.
	StylePlain Style = "plain"
)

// CollisionChecker reports whether a candidate code is already in use.
// Implementations must check every table that stores unused codes.
type CollisionChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// CollisionCheckerFunc adapts a function to the CollisionChecker interface.
type CollisionCheckerFunc func(ctx context.Context, code string) (bool, error)

func (f CollisionCheckerFunc) CodeExists(ctx context.Context, code string) (bool, error) {
	return f(ctx, code)
}

// Generate produces a uniform-random code of the requested length over the
// uppercase-alphanumeric alphabet.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := randInt(len(alphabet))
		if err != nil {
			return "", fmt.Errorf("generating invite code: %w", err)
		}
		result[i] = alphabet[idx]
	}
	return string(result), nil
}

// GenerateUnique produces a code that the checker confirms unused, retrying
// up to maxRetries times on collision. On retry exhaustion it falls back to a
// random prefix plus a base-36 timestamp suffix truncated to length, which
// terminates without further store queries.
func GenerateUnique(ctx context.Context, length, maxRetries int, checker CollisionChecker) (string, error) {
	if checker == nil {
		return "", fmt.Errorf("collision checker is required")
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := Generate(length)
		if err != nil {
			return "", err
		}
		exists, err := checker.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking code collision: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return fallbackCode(length)
}

// fallbackCode mixes a short random prefix with the tail of a base-36
// timestamp. Not collision-checked; only reachable after maxRetries real
// collisions.
func fallbackCode(length int) (string, error) {
	prefixLen := length / 2
	prefix, err := Generate(prefixLen)
	if err != nil {
		return "", err
	}

	ts := strings.ToUpper(strconv.FormatInt(time.Now().UTC().UnixNano(), 36))
	suffixLen := length - prefixLen
	if len(ts) > suffixLen {
		ts = ts[len(ts)-suffixLen:]
	}

	code := prefix + ts
	if len(code) > length {
		code = code[:length]
	}
	return code, nil
}

// Normalize strips every non-alphanumeric character and uppercases, turning
// user-typed input into its canonical stored form.
func Normalize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.ToUpper(input) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateFormat reports whether the input normalizes to exactly length
// alphanumeric characters.
func ValidateFormat(input string, length int) bool {
	if length <= 0 {
		length = DefaultLength
	}
	return len(Normalize(input)) == length
}

// Format renders a code for display. Unknown styles fall through to plain.
func Format(code string, style Style) string {
	normalized := Normalize(code)
	if style != StyleDashed {
		return normalized
	}
	mid := len(normalized) / 2
	if mid == 0 {
		return normalized
	}
	return normalized[:mid] + "-" + normalized[mid:]
}

func randInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	var buff = make([]byte, 1)
	if _, err := rand.Read(buff); err != nil {
		return 0, err
	}
	return int(buff[0]) % max, nil
}
