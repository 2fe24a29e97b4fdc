package listsync

import (
	"hash/fnv"
	"strconv"
	"sync"
)

// AliasTable maps canonical server ids to process-local numeric aliases
// and back. Once a canonical id has been seen its alias never changes for
// the lifetime of the table. Numeric canonical ids pass through unchanged;
// everything else hashes to a positive 32-bit value, so two distinct
// canonical ids can collide; that risk is accepted and not detected.
// One table is scoped to one authenticated session.
type AliasTable struct {
	mu          sync.Mutex
	toAlias     map[string]int64
	toCanonical map[int64]string
}

// NewAliasTable creates an empty alias table
func NewAliasTable() *AliasTable {
	return &AliasTable{
		toAlias:     make(map[string]int64),
		toCanonical: make(map[int64]string),
	}
}

// Remember returns the stable numeric alias for a canonical id, computing
// and storing one on first sight
func (t *AliasTable) Remember(canonical string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if alias, ok := t.toAlias[canonical]; ok {
		return alias
	}

	var alias int64
	if n, err := strconv.ParseInt(canonical, 10, 64); err == nil && n >= 0 {
		alias = n
	} else {
		h := fnv.New32a()
		h.Write([]byte(canonical))
		alias = int64(h.Sum32() & 0x7fffffff)
	}

	t.toAlias[canonical] = alias
	t.toCanonical[alias] = canonical
	return alias
}

// CanonicalOf returns the canonical id for an alias. When the mapping was
// never established it falls back to the alias's decimal string; the
// server will answer such a request with a not-found class error, which
// callers treat as a degraded path rather than a crash.
func (t *AliasTable) CanonicalOf(alias int64) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if canonical, ok := t.toCanonical[alias]; ok {
		return canonical
	}
	return strconv.FormatInt(alias, 10)
}

// Len reports how many canonical ids the table has seen
func (t *AliasTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.toAlias)
}
