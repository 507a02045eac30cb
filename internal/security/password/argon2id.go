// Package password hashes and verifies user passwords with argon2id and
// enforces the configured password policy.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params is the argon2id work factor.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, SaltLen: 16, KeyLen: 32}

// upper bounds accepted when decoding a stored hash
const (
	maxMemory = 1 << 21 // 2 GiB in KiB
	maxTime   = 64
)

var ErrEmptyPassword = errors.New("password: empty password")

// Hasher produces PHC strings: $argon2id$v=19$m=..,t=..,p=..$<salt>$<key>
type Hasher struct {
	params Params
}

func NewHasher(p Params) *Hasher {
	if p.SaltLen == 0 {
		p.SaltLen = Default.SaltLen
	}
	if p.KeyLen == 0 {
		p.KeyLen = Default.KeyLen
	}
	if p.Time == 0 {
		p.Time = Default.Time
	}
	if p.Memory == 0 {
		p.Memory = Default.Memory
	}
	if p.Parallelism == 0 {
		p.Parallelism = Default.Parallelism
	}
	return &Hasher{params: p}
}

func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	p := h.params
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: read salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches phc. Malformed or foreign hashes
// yield false, never a panic.
func (h *Hasher) Verify(plain, phc string) bool {
	d, ok := decode(phc)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(plain), d.salt, d.time, d.memory, d.threads, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(key, d.key) == 1
}

type decoded struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decode(phc string) (decoded, bool) {
	var d decoded
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return d, false
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return d, false
	}

	for _, kv := range strings.Split(parts[3], ",") {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return d, false
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return d, false
		}
		switch k {
		case "m":
			d.memory = uint32(n)
		case "t":
			d.time = uint32(n)
		case "p":
			if n > 255 {
				return d, false
			}
			d.threads = uint8(n)
		default:
			return d, false
		}
	}
	if d.memory == 0 || d.memory > maxMemory || d.time == 0 || d.time > maxTime || d.threads == 0 {
		return d, false
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(d.salt) == 0 {
		return d, false
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(d.key) == 0 {
		return d, false
	}
	return d, true
}
