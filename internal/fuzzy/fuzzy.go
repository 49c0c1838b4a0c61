// Package fuzzy scores approximate string similarity on a 0-100 scale.
//
// Similarity is the normalised indel distance: insertions and deletions
// cost 1 and a substitution costs 2, so
//
//	ratio = 100 * (1 - indel/(len(a)+len(b)))
//
// where indel = len(a)+len(b)-2*LCS(a, b). Lengths are counted in runes.
package fuzzy

// Ratio returns the normalised indel similarity of a and b.
// Two empty strings score 0.
func Ratio(a, b string) float64 {
	return ratio([]rune(a), []rune(b))
}

// PartialRatio returns the best Ratio between the shorter string and every
// window of the longer one with the same length. Windows hanging off either
// end are truncated, so a prefix or suffix overlap still scores. With equal
// lengths both directions are tried.
//
// Inputs are compared as given; callers lowercase them first.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	best := sweep(ra, rb)
	if len(ra) == len(rb) && best < 100 {
		best = max(best, sweep(rb, ra))
	}
	return best
}

func sweep(short, long []rune) float64 {
	m, n := len(short), len(long)
	if m == 0 {
		return 0
	}

	var best float64
	for start := -(m - 1); start < n; start++ {
		lo, hi := max(start, 0), min(start+m, n)
		if score := ratio(short, long[lo:hi]); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	indel := total - 2*lcs(a, b)
	return 100 * (1 - float64(indel)/float64(total))
}

// lcs returns the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for _, x := range a {
		for j, y := range b {
			switch {
			case x == y:
				cur[j+1] = prev[j] + 1
			case prev[j+1] >= cur[j]:
				cur[j+1] = prev[j+1]
			default:
				cur[j+1] = cur[j]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
