package metrics

import "sort"

// SalesTotal is one representative's aggregate sales used for ranking.
type SalesTotal struct {
	RepresentativeID int64
	RegionID         int64
	Total            float64
}

// Ranked is a representative with its assigned rank and quartile.
type Ranked struct {
	SalesTotal
	Rank     int
	Quartile int
}

// RankBySales orders representatives by total sales descending and assigns
// standard competition ranks: tied totals share a rank and the next distinct
// total receives rank + count of ties. Ties keep their input order, so
// callers should pass a deterministically ordered slice.
func RankBySales(totals []SalesTotal) []Ranked {
	ranked := make([]Ranked, len(totals))
	for i, t := range totals {
		ranked[i] = Ranked{SalesTotal: t}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	for i := range ranked {
		if i > 0 && ranked[i].Total == ranked[i-1].Total {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}
	assignQuartiles(ranked)
	return ranked
}

// RankWithinRegions ranks representatives inside each region using the same
// competition semantics. Results are grouped by region id.
func RankWithinRegions(totals []SalesTotal) map[int64][]Ranked {
	byRegion := make(map[int64][]SalesTotal)
	for _, t := range totals {
		byRegion[t.RegionID] = append(byRegion[t.RegionID], t)
	}
	out := make(map[int64][]Ranked, len(byRegion))
	for region, group := range byRegion {
		out[region] = RankBySales(group)
	}
	return out
}

// assignQuartiles splits the sorted slice into four near-equal buckets with
// NTILE semantics: the first len%4 buckets take one extra member, ties keep
// their stable input order. Quartile 1 holds the top performers.
func assignQuartiles(ranked []Ranked) {
	n := len(ranked)
	if n == 0 {
		return
	}
	base := n / 4
	extra := n % 4
	idx := 0
	for q := 1; q <= 4; q++ {
		size := base
		if q <= extra {
			size++
		}
		for i := 0; i < size && idx < n; i++ {
			ranked[idx].Quartile = q
			idx++
		}
	}
}
