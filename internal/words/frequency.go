package words

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// BuildLists reads a frequency list ("word count" per line) and buckets the
// usable words by supported length. Tokens with digits, punctuation or letters
// outside the Turkish alphabet are skipped, as are lines without a count.
// Each bucket is de-duplicated and sorted.
func BuildLists(r io.Reader) (map[int][]string, error) {
	sets := make(map[int]map[string]struct{}, len(Modes))
	for _, m := range Modes {
		sets[m] = make(map[string]struct{})
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w, ok := parseFrequencyLine(sc.Text())
		if !ok {
			continue
		}
		if set, ok := sets[utf8.RuneCountInString(w)]; ok {
			set[w] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	out := make(map[int][]string, len(sets))
	for m, set := range sets {
		list := make([]string, 0, len(set))
		for w := range set {
			list = append(list, w)
		}
		sort.Strings(list)
		out[m] = list
	}
	return out, nil
}

func parseFrequencyLine(line string) (string, bool) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return "", false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "", false
	}
	w := Upper(parts[0])
	if !IsTurkish(w) {
		return "", false
	}
	return w, true
}
