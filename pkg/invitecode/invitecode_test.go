package invitecode

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	code, err := Generate(DefaultLength)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != DefaultLength {
		t.Fatalf("expected length %d, got %d (%q)", DefaultLength, len(code), code)
	}
	for _, r := range code {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
			t.Fatalf("unexpected character %q in code %q", r, code)
		}
	}
}

func TestGenerateRejectsNonPositiveLength(t *testing.T) {
	if _, err := Generate(0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := Generate(-3); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestGenerateSequentialUniqueness(t *testing.T) {
	const n = 2000
	seen := make(map[string]struct{}, n)
	checker := CollisionCheckerFunc(func(ctx context.Context, code string) (bool, error) {
		_, dup := seen[code]
		return dup, nil
	})

	for i := 0; i < n; i++ {
		code, err := GenerateUnique(context.Background(), DefaultLength, DefaultMaxRetries, checker)
		if err != nil {
			t.Fatalf("generate unique #%d: %v", i, err)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q at iteration %d", code, i)
		}
		seen[code] = struct{}{}
	}
}

func TestGenerateUniqueRetriesOnCollision(t *testing.T) {
	calls := 0
	checker := CollisionCheckerFunc(func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls < 3, nil
	})

	code, err := GenerateUnique(context.Background(), DefaultLength, DefaultMaxRetries, checker)
	if err != nil {
		t.Fatalf("generate unique: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 collision checks, got %d", calls)
	}
	if len(code) != DefaultLength {
		t.Fatalf("unexpected code length %d", len(code))
	}
}

func TestGenerateUniqueFallbackAfterExhaustion(t *testing.T) {
	calls := 0
	alwaysTaken := CollisionCheckerFunc(func(ctx context.Context, code string) (bool, error) {
		calls++
		return true, nil
	})

	code, err := GenerateUnique(context.Background(), DefaultLength, 5, alwaysTaken)
	if err != nil {
		t.Fatalf("expected fallback code, got error: %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected exactly 5 checks before fallback, got %d", calls)
	}
	if len(code) != DefaultLength {
		t.Fatalf("fallback code has length %d, want %d", len(code), DefaultLength)
	}
	if !ValidateFormat(code, DefaultLength) {
		t.Fatalf("fallback code %q fails format validation", code)
	}
}

func TestGenerateUniquePropagatesCheckerError(t *testing.T) {
	boom := errors.New("store down")
	checker := CollisionCheckerFunc(func(ctx context.Context, code string) (bool, error) {
		return false, boom
	})

	if _, err := GenerateUnique(context.Background(), DefaultLength, 2, checker); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped checker error, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abcd-1234", "ABCD1234"},
		{" ab cd 12.34 ", "ABCD1234"},
		{"ABCD1234", "ABCD1234"},
		{"a!b@c#d$1%2^3&4", "ABCD1234"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate(DefaultLength)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		dashed := Format(code, StyleDashed)
		if Normalize(dashed) != Normalize(code) {
			t.Fatalf("round trip failed: code %q, dashed %q", code, dashed)
		}
	}
}

func TestFormatStyles(t *testing.T) {
	if got := Format("abcd1234", StyleDashed); got != "ABCD-1234" {
		t.Fatalf("dashed format = %q, want ABCD-1234", got)
	}
	if got := Format("ab-cd 1234", StylePlain); got != "ABCD1234" {
		t.Fatalf("plain format = %q, want ABCD1234", got)
	}
	if got := Format("AB", StyleDashed); got != "A-B" {
		t.Fatalf("short dashed format = %q, want A-B", got)
	}
}

func TestValidateFormat(t *testing.T) {
	if !ValidateFormat("ABCD-1234", DefaultLength) {
		t.Fatal("dashed 8-char code should validate")
	}
	if !ValidateFormat("abcd1234", DefaultLength) {
		t.Fatal("lowercase 8-char code should validate")
	}
	if ValidateFormat("ABC", DefaultLength) {
		t.Fatal("short code should not validate")
	}
	if ValidateFormat("ABCD12345", DefaultLength) {
		t.Fatal("long code should not validate")
	}
	if ValidateFormat("", DefaultLength) {
		t.Fatal("empty code should not validate")
	}
}
