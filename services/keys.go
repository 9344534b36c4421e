package services

import (
	"errors"
	"strings"
	"sync"
)

// ErrNoKeys is returned when a condense call is attempted with an empty pool.
var ErrNoKeys = errors.New("no LLM API keys configured")

// KeyPool rotates a set of LLM API keys round-robin so no single key absorbs
// every request's rate limit. The cursor persists for the lifetime of the
// pool; a bad key is simply retried on its next rotation turn.
type KeyPool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// ParseKeys splits a comma-separated key string, trimming whitespace and
// deduplicating while preserving order.
func ParseKeys(raw string) []string {
	seen := map[string]bool{}
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		k := strings.TrimSpace(part)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{keys: keys}
}

func (p *KeyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Next returns the next key in rotation order and advances the cursor.
func (p *KeyPool) Next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return "", ErrNoKeys
	}
	key := p.keys[p.cursor%len(p.keys)]
	p.cursor = (p.cursor + 1) % len(p.keys)
	return key, nil
}

// Reset rewinds the rotation cursor to the first key.
func (p *KeyPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = 0
}

// ─── Session pool ─────────────────────────────────────────────────────────────

var (
	sessionPoolMu  sync.Mutex
	sessionPool    *KeyPool
	sessionPoolSig string
)

// SessionKeyPool returns the process-wide rotation pool for the given key
// set. The cursor survives across requests as long as the key set is
// unchanged; changing the keys starts a fresh rotation.
func SessionKeyPool(keys []string) *KeyPool {
	sessionPoolMu.Lock()
	defer sessionPoolMu.Unlock()
	sig := strings.Join(keys, ",")
	if sessionPool == nil || sig != sessionPoolSig {
		sessionPool = NewKeyPool(keys)
		sessionPoolSig = sig
	}
	return sessionPool
}

// ResetSession clears all session-scoped state: the rotation cursor, the
// extraction cache, and any stored run rows.
func ResetSession() {
	sessionPoolMu.Lock()
	sessionPool = nil
	sessionPoolSig = ""
	sessionPoolMu.Unlock()

	ClearExtractionCache()
	ClearRunRows()
}
