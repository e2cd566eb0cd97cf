package assistant

import "strings"

// CredentialPool is the ordered list of API keys. Blank entries are slots
// that were not configured and are never used.
type CredentialPool []string

// Valid returns the configured keys in order.
func (p CredentialPool) Valid() []string {
	valid := make([]string, 0, len(p))
	for _, k := range p {
		if strings.TrimSpace(k) != "" {
			valid = append(valid, k)
		}
	}
	return valid
}

// ModelPool is the ordered list of model ids; index 0 is the primary.
type ModelPool []string

func (p ModelPool) Len() int { return len(p) }

// At returns the model under cursor i, wrapping around the pool.
func (p ModelPool) At(i int64) string {
	return p[wrap(i, len(p))]
}

func wrap(i int64, n int) int64 {
	if n == 0 {
		return 0
	}
	i %= int64(n)
	if i < 0 {
		i += int64(n)
	}
	return i
}

func newModelPool(models []string) ModelPool {
	pool := make(ModelPool, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			pool = append(pool, m)
		}
	}
	return pool
}
