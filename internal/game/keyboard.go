package game

// DeriveKeyboard folds the guess history into a letter -> status map.
// A letter only ever moves up: absent -> present -> correct.
func DeriveKeyboard(guesses []Guess) map[string]Status {
	keys := make(map[string]Status)
	for _, g := range guesses {
		for i, r := range []rune(g.Word) {
			if i >= len(g.Result) {
				break
			}
			letter, status := string(r), g.Result[i]
			if prev, ok := keys[letter]; !ok || status.rank() > prev.rank() {
				keys[letter] = status
			}
		}
	}
	return keys
}
