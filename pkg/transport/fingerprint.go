package transport

import "math/rand/v2"

// Fingerprint is the identifying header set sent with every request.
type Fingerprint struct {
	UserAgentPool []string
	StaticHeaders map[string]string
}

// PickUserAgent selects a user agent from pool using rnd. It returns "" for an empty pool, and the
// first entry when rnd is nil.
func PickUserAgent(pool []string, rnd *rand.Rand) string {
	switch {
	case len(pool) == 0:
		return ""
	case len(pool) == 1 || rnd == nil:
		return pool[0]
	}
	return pool[rnd.IntN(len(pool))]
}
