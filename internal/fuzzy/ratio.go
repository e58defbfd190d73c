// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fuzzy computes sequence-similarity ratios for keyword matching.
// The ratio is 2*M/T where M is the total length of the matching blocks
// between the two strings and T their combined length, matching the
// classic SequenceMatcher formula the scorer thresholds were tuned against.
package fuzzy

// Ratio returns the similarity of a and b in [0, 1].
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchTotal(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

// matchTotal sums the matching-block lengths by recursively splitting
// around the leftmost longest common run.
func matchTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	ai, bj, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	return size +
		matchTotal(a, b, alo, ai, blo, bj) +
		matchTotal(a, b, ai+size, ahi, bj+size, bhi)
}

// longestMatch finds the leftmost longest matching run between a[alo:ahi]
// and b[blo:bhi]. Ties prefer the smallest index in a, then in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] == b[j] {
				k := j2len[j-1] + 1
				newj2len[j] = k
				if k > bestsize {
					besti, bestj, bestsize = i-k+1, j-k+1, k
				}
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
