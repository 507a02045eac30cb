package password_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dropDatabas3/lmsauth/internal/security/password"
)

var fast = password.Params{Memory: 1024, Time: 1, Parallelism: 1}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := password.NewHasher(fast)

	phc, err := h.Hash("S3cret!pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", phc)
	}
	if !h.Verify("S3cret!pass", phc) {
		t.Fatal("expected verify ok")
	}
	if h.Verify("S3cret!pasS", phc) {
		t.Fatal("expected verify to fail for a different password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := password.NewHasher(fast)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := password.NewHasher(fast).Hash("")
	if !errors.Is(err, password.ErrEmptyPassword) {
		t.Fatalf("want ErrEmptyPassword, got %v", err)
	}
}

func TestVerifyMalformedNeverPanics(t *testing.T) {
	h := password.NewHasher(fast)
	cases := []string{
		"",
		"plaintext",
		"$argon2id$",
		"$argon2id$v=19$m=1024,t=1,p=1$onlysalt",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=999$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$2a$10$abcdefghijklmnopqrstuv",
	}
	for _, phc := range cases {
		t.Run(phc, func(t *testing.T) {
			if h.Verify("whatever", phc) {
				t.Fatalf("malformed hash %q verified", phc)
			}
		})
	}
}

func TestPolicyCheck(t *testing.T) {
	p := password.Policy{
		MinLength:    8,
		RequireDigit: true,
		Blacklist:    password.NewBlacklist("Password123"),
	}

	if err := p.Check("longenough1"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	var perr *password.PolicyError
	if err := p.Check("short"); !errors.As(err, &perr) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if strings.Join(perr.Reasons, ",") != "too_short,missing_digit" {
		t.Fatalf("unexpected reasons: %v", perr.Reasons)
	}

	if err := p.Check("password123"); !errors.As(err, &perr) || perr.Reasons[0] != "too_common" {
		t.Fatalf("expected blacklist hit, got %v", err)
	}
}
