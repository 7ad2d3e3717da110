package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Keyring holds the fixed API key allow-list, loaded once at process start.
// It is constructed explicitly in main and passed by reference to the HTTP
// layer; after construction it is read-only and safe for concurrent use.
type Keyring struct {
	keys map[string]struct{}
}

// LoadKeyring reads the allow-list file at path: one key per line, blank lines
// and '#' comments ignored. A missing or unreadable file is returned as an
// error; callers are expected to treat it as fatal at startup.
func LoadKeyring(path string) (*Keyring, error) {
	if path == "" {
		return nil, fmt.Errorf("api keys file path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open api keys file: %w", err)
	}
	defer f.Close()

	keys := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read api keys file: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("api keys file %s contains no keys", path)
	}

	return &Keyring{keys: keys}, nil
}

// NewKeyring builds a keyring from an in-memory key list. Used by tests and
// by callers that source keys from somewhere other than a file.
func NewKeyring(keys []string) *Keyring {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			m[k] = struct{}{}
		}
	}
	return &Keyring{keys: m}
}

// Authenticate reports whether the presented key is a non-empty exact match
// against one entry in the allow-list. Binary allow/deny only: no expiry,
// rotation, or per-key scoping.
func (k *Keyring) Authenticate(presented string) bool {
	if presented == "" {
		return false
	}
	_, ok := k.keys[presented]
	return ok
}

// Len returns the number of loaded keys.
func (k *Keyring) Len() int {
	return len(k.keys)
}
