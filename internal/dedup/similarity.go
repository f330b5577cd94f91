package dedup

import "strings"

// TitleSimilarity returns a ratio in [0,1] between two normalized titles:
// the mean best-match word similarity over the words of the shorter title.
// A word scores 1 against an exact or substring match ("quake" inside
// "earthquake"), otherwise a Levenshtein ratio against its closest word.
// Rewritten headlines of the same event ("Magnitude 7.1 earthquake hits
// Tokyo" vs "7.1 quake strikes near Tokyo") land above the 0.7 default.
func TitleSimilarity(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	short, long := wordsA, wordsB
	if len(wordsB) < len(wordsA) {
		short, long = wordsB, wordsA
	}

	var total float64
	for _, w := range short {
		best := 0.0
		for _, v := range long {
			if s := wordSimilarity(w, v); s > best {
				best = s
				if best == 1 {
					break
				}
			}
		}
		total += best
	}
	return total / float64(len(short))
}

func wordSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	// Substring containment needs a minimum length so "a" inside "war"
	// does not count as a match.
	if len(a) >= 3 && len(b) >= 3 && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
