// Package textsim computes lexical similarity between two strings using the
// Ratcliff-Obershelp (gestalt pattern matching) ratio. The ratio tolerates
// word reordering better than insertion or deletion, which is the behavior
// the duplicate guards rely on: two headlines about the same event with one
// verb swapped score high, headlines about different events score low.
package textsim

import "strings"

// Ratio returns the similarity of a and b as a value in [0,1].
// 1 means identical, 0 means no common characters.
// Comparison is case-insensitive and whitespace-normalized.
func Ratio(a, b string) float64 {
	ra := normalize(a)
	rb := normalize(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	m := matchedLen(ra, rb)
	return 2 * float64(m) / float64(len(ra)+len(rb))
}

// Similar reports whether Ratio(a, b) exceeds threshold.
func Similar(a, b string, threshold float64) bool {
	return Ratio(a, b) > threshold
}

func normalize(s string) []rune {
	return []rune(strings.Join(strings.Fields(strings.ToLower(s)), " "))
}

// matchedLen sums the lengths of the recursively found longest common
// substrings, the M term of the Ratcliff-Obershelp ratio.
func matchedLen(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedLen(a[:ai], b[:bi])
	total += matchedLen(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	// One-row DP: row[j] is the length of the common suffix ending at
	// a[i-1], b[j-1].
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prev + 1
				if row[j] > size {
					size = row[j]
					ai = i - size
					bi = j - size
				}
			} else {
				row[j] = 0
			}
			prev = cur
		}
	}
	return ai, bi, size
}
