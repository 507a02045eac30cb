package password

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist is a case-insensitive set of passwords refused outright.
// It is read-only after construction.
type Blacklist struct {
	data map[string]struct{}
}

func NewBlacklist(words ...string) *Blacklist {
	bl := &Blacklist{data: make(map[string]struct{}, len(words))}
	for _, w := range words {
		bl.add(w)
	}
	return bl
}

// LoadBlacklist reads one password per line; blank lines and #comments are skipped.
// An empty path yields an empty list.
func LoadBlacklist(path string) (*Blacklist, error) {
	bl := NewBlacklist()
	if strings.TrimSpace(path) == "" {
		return bl, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); !strings.HasPrefix(line, "#") {
			bl.add(line)
		}
	}
	return bl, sc.Err()
}

func (b *Blacklist) add(w string) {
	if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
		b.data[w] = struct{}{}
	}
}

func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}
