package dataset

import "math/rand"

// Sample draws n records uniformly without replacement using a seeded
// source. Inputs of n or fewer records are returned unchanged. The result
// is in draw order and identical for identical input and seed.
func Sample(records []Record, n int, seed int64) []Record {
	if n < 0 || len(records) <= n {
		return records
	}
	rng := rand.New(rand.NewSource(seed))
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	out := make([]Record, n)
	// partial Fisher-Yates over the index slice
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = records[idx[i]]
	}
	return out
}
