package media

// ratingOrder lists US certifications from least to most restrictive.
var ratingOrder = []string{"G", "PG", "PG-13", "R", "NC-17", "18", "TV-MA"}

func ratingRank(r string) int {
	for i, v := range ratingOrder {
		if v == r {
			return i
		}
	}
	return -1
}

// ReduceRatings picks the certification that appears most often. Ties go to
// the more restrictive rating. Unrecognized certifications are ignored and ""
// is returned when nothing usable remains.
func ReduceRatings(ratings []string) string {
	counts := make(map[string]int)
	for _, r := range ratings {
		if ratingRank(r) >= 0 {
			counts[r]++
		}
	}

	best := ""
	bestCount := 0
	for r, n := range counts {
		if n > bestCount || (n == bestCount && ratingRank(r) > ratingRank(best)) {
			best = r
			bestCount = n
		}
	}
	return best
}
