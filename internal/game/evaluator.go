package game

import "fmt"

// Evaluate scores guess against target with the two-pass algorithm.
//
// Pass 1 marks exact matches as correct and counts the target letters left unmatched.
// Pass 2 marks each remaining guess letter present while an unmatched copy of it is
// left in the target, consuming that copy; everything else stays absent.
//
// A letter is therefore never reported correct or present more times than it occurs
// in target. Both words must have the same number of letters; callers validate that
// first, so a mismatch panics.
func Evaluate(guess, target string) Result {
	g, t := []rune(guess), []rune(target)
	if len(g) != len(t) {
		panic(fmt.Sprintf("game: evaluate %q against %q: length mismatch", guess, target))
	}

	res := make(Result, len(g))
	remaining := make(map[rune]int, len(t))

	for i := range g {
		if g[i] == t[i] {
			res[i] = StatusCorrect
		} else {
			res[i] = StatusAbsent
			remaining[t[i]]++
		}
	}

	for i := range g {
		if res[i] == StatusCorrect {
			continue
		}
		if remaining[g[i]] > 0 {
			res[i] = StatusPresent
			remaining[g[i]]--
		}
	}
	return res
}

// Solved reports whether every letter is correct.
func (r Result) Solved() bool {
	for _, s := range r {
		if s != StatusCorrect {
			return false
		}
	}
	return len(r) > 0
}
