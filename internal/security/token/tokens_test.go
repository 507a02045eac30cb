package tokens_test

import (
	"testing"

	tokens "github.com/dropDatabas3/lmsauth/internal/security/token"
)

func TestNumericCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := tokens.NumericCode(6)
		if err != nil {
			t.Fatalf("numeric code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("want 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in %q", code)
			}
		}
	}
}

func TestDigest(t *testing.T) {
	a := tokens.SHA256Hex("123456")
	if len(a) != 64 {
		t.Fatalf("unexpected digest length %d", len(a))
	}
	if !tokens.EqualDigest(a, tokens.SHA256Hex("123456")) {
		t.Fatal("same input must produce equal digests")
	}
	if tokens.EqualDigest(a, tokens.SHA256Hex("12345")) {
		t.Fatal("prefix must not match")
	}
}

func TestGenerateOpaqueTokenUnique(t *testing.T) {
	a, _ := tokens.GenerateOpaqueToken(16)
	b, _ := tokens.GenerateOpaqueToken(16)
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty tokens, got %q %q", a, b)
	}
}
