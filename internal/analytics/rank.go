package analytics

import "sort"

// Ranked is one category produced by Rank.
type Ranked struct {
	Key   string
	Count int64
}

// RankOptions controls Rank.
type RankOptions struct {
	// Limit truncates the result to the top N categories. Zero keeps all.
	Limit int
	// Seed lists categories that always appear, zero-filled, in this order
	// ahead of categories first seen in the input.
	Seed []string
}

// Rank classifies items, counts each category, and sorts categories by count
// descending. Ties keep first-seen order (seeds first).
func Rank[T any](items []T, classify func(T) string, opts RankOptions) []Ranked {
	index := make(map[string]int, len(opts.Seed))
	ranked := make([]Ranked, 0, len(opts.Seed))

	for _, key := range opts.Seed {
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(ranked)
		ranked = append(ranked, Ranked{Key: key})
	}

	for _, item := range items {
		key := classify(item)
		i, ok := index[key]
		if !ok {
			i = len(ranked)
			index[key] = i
			ranked = append(ranked, Ranked{Key: key})
		}
		ranked[i].Count++
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked
}

// Percent returns round(count / total * 100). A zero total yields 0.
func Percent(count, total int64) int {
	if total <= 0 {
		total = 1
	}
	return int(roundHalfUp(float64(count) / float64(total) * 100))
}

// Percentages returns Percent for each count, then lowers the shares that were
// rounded up the most until the sum is within 100. Ties are lowered from the
// end, where the smaller categories sit after Rank.
func Percentages(counts []int64, total int64) []int {
	out := make([]int, len(counts))
	if total <= 0 {
		return out
	}

	sum := 0
	for i, c := range counts {
		out[i] = Percent(c, total)
		sum += out[i]
	}

	lowered := make([]bool, len(counts))
	for sum > 100 {
		pick := -1
		var pickExcess int64
		for i, c := range counts {
			rem := c * 100 % total
			if lowered[i] || rem == 0 || 2*rem < total {
				continue
			}
			// Amount added by rounding up, scaled by total.
			if excess := total - rem; pick < 0 || excess >= pickExcess {
				pick, pickExcess = i, excess
			}
		}
		if pick < 0 {
			break
		}
		lowered[pick] = true
		out[pick]--
		sum--
	}
	return out
}
