// Package simulation generates deterministic demo data for the dashboard,
// the IoT simulator and the forecast endpoint.
//
// Every pseudo-random value is drawn from a Stream seeded from a filter key,
// so identical keys produce identical output on any host.
package simulation

const (
	hashOffset uint32 = 0x811C9DC5
	hashPrime  uint32 = 0x01000193
)

// HashKey folds a key into a 32-bit seed, FNV-1a style over code points.
func HashKey(key string) uint32 {
	h := hashOffset
	for _, r := range key {
		h ^= uint32(r)
		h *= hashPrime
	}
	return h
}
