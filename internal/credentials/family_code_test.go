package credentials

import (
	"strings"
	"testing"
)

func TestGenerateFamilyCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := GenerateFamilyCode()
		if err != nil {
			t.Fatalf("GenerateFamilyCode() error = %v", err)
		}

		parts := strings.Split(code, "-")
		if len(parts) != 3 {
			t.Fatalf("code %q does not have adjective-noun-number form", code)
		}
		if len(parts[2]) != 2 {
			t.Errorf("code %q number part = %q, want two digits", code, parts[2])
		}

		seen[code] = true
	}

	// 40 adjectives x 40 nouns x 100 numbers: fifty draws colliding into a
	// single code would mean the randomness is broken.
	if len(seen) < 2 {
		t.Error("generator produced a single code across fifty draws")
	}
}
