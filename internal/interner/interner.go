// Package interner canonicalizes strings into shared handles with
// pointer-equality semantics. It is used for parameter names and instance
// ids so that repeated equal strings collapse to one allocation and can be
// compared by address instead of by content.
package interner

import "sync"

var (
	mu    sync.Mutex
	table = make(map[string]*string)
)

// Intern returns the canonical handle for s, allocating one the first time
// s is seen. Two calls with equal strings return the same pointer.
func Intern(s string) *string {
	mu.Lock()
	defer mu.Unlock()
	if p, ok := table[s]; ok {
		return p
	}
	v := s
	table[s] = &v
	return &v
}

// Same reports whether a and b are handles returned by Intern for equal
// strings, comparing by pointer rather than content.
func Same(a, b *string) bool {
	return a == b
}
