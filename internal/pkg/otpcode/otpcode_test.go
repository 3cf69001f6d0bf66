package otpcode

import "testing"

func TestNumericGenerate(t *testing.T) {
	gen := NewNumeric(6)

	seen := make(map[string]struct{})
	for range 200 {
		code := gen.Generate()

		if len(code) != 6 {
			t.Fatalf("len(%q) = %d, want 6", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = struct{}{}
	}

	// 200 draws from a million-value space should essentially never collapse
	// to a handful of values.
	if len(seen) < 150 {
		t.Errorf("got %d distinct codes out of 200 draws", len(seen))
	}
}

func TestNumericGenerateLength(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		gen := NewNumeric(length)
		if code := gen.Generate(); len(code) != length {
			t.Errorf("NewNumeric(%d).Generate() = %q, want length %d", length, code, length)
		}
	}
}
