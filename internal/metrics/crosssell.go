package metrics

import "sort"

// ProductPair is an unordered product pairing, canonicalized with the
// smaller id first.
type ProductPair struct {
	ProductA int64
	ProductB int64
}

// PairFrequency is a pair with its co-occurrence count.
type PairFrequency struct {
	ProductPair
	Frequency int
}

const (
	minPairFrequency = 2
	maxPairResults   = 10
)

// CrossSellPairs counts, for every order with two or more distinct products,
// each unordered product pair co-occurring in that order. Pairs below the
// reporting threshold are dropped; the rest are sorted by descending
// frequency (pair ids ascending on ties) and capped at the top ten.
func CrossSellPairs(orderProducts map[int64][]int64) []PairFrequency {
	counts := make(map[ProductPair]int)
	for _, products := range orderProducts {
		distinct := dedupe(products)
		if len(distinct) < 2 {
			continue
		}
		sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
		for i := 0; i < len(distinct); i++ {
			for j := i + 1; j < len(distinct); j++ {
				counts[ProductPair{ProductA: distinct[i], ProductB: distinct[j]}]++
			}
		}
	}

	pairs := make([]PairFrequency, 0, len(counts))
	for pair, freq := range counts {
		if freq < minPairFrequency {
			continue
		}
		pairs = append(pairs, PairFrequency{ProductPair: pair, Frequency: freq})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Frequency != pairs[j].Frequency {
			return pairs[i].Frequency > pairs[j].Frequency
		}
		if pairs[i].ProductA != pairs[j].ProductA {
			return pairs[i].ProductA < pairs[j].ProductA
		}
		return pairs[i].ProductB < pairs[j].ProductB
	})
	if len(pairs) > maxPairResults {
		pairs = pairs[:maxPairResults]
	}
	return pairs
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
