// internal/words/words.go
//
// Dictionary provider for the game engine.
//
// Responsibilities:
//   - Load the 5/6/7-letter word lists from environment-provided files or the embedded defaults.
//   - Canonicalise every word to Turkish upper case (i→İ, ı→I) and drop anything outside the alphabet.
//   - Answer membership queries and pick the deterministic word of the day.
//
// Environment variables:
//   WORDS_5_FILE=/path/to/words5.txt
//   WORDS_6_FILE=/path/to/words6.txt
//   WORDS_7_FILE=/path/to/words7.txt
//
// A Dictionary is immutable after construction and safe to share between goroutines.

package words

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/addkelime/kelime-server/assets"
)

// DefaultMode is used whenever an unsupported word length is requested.
const DefaultMode = 5

// seedSalt is mixed into the daily seed so other games using the same hash do not collide.
const seedSalt = "addkelime2024"

// Alphabet is the Turkish alphabet in canonical upper case.
const Alphabet = "ABCÇDEFGĞHIİJKLMNOÖPRSŞTUÜVYZ"

// Modes lists the supported word lengths.
var Modes = []int{5, 6, 7}

// Dictionary holds the word lists, one per supported length.
type Dictionary struct {
	lists map[int][]string
	sets  map[int]map[string]struct{}
	today func() string
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithToday sets the date-key source used by DailyWord when no date is given.
func WithToday(fn func() string) Option {
	return func(d *Dictionary) { d.today = fn }
}

// New builds a Dictionary from raw lists keyed by word length.
// Words are canonicalised, filtered to the right length and alphabet, de-duplicated and sorted.
// Every supported mode must end up with at least one word.
func New(lists map[int][]string, opts ...Option) (*Dictionary, error) {
	d := &Dictionary{
		lists: make(map[int][]string, len(Modes)),
		sets:  make(map[int]map[string]struct{}, len(Modes)),
		today: utcToday,
	}
	for _, mode := range Modes {
		set := make(map[string]struct{}, len(lists[mode]))
		for _, raw := range lists[mode] {
			w := Upper(strings.TrimSpace(raw))
			if utf8.RuneCountInString(w) != mode || !IsTurkish(w) {
				continue
			}
			set[w] = struct{}{}
		}
		if len(set) == 0 {
			return nil, fmt.Errorf("words: %d-letter list is empty", mode)
		}
		list := make([]string, 0, len(set))
		for w := range set {
			list = append(list, w)
		}
		sort.Strings(list)
		d.lists[mode] = list
		d.sets[mode] = set
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Load reads each list from WORDS_<n>_FILE when set, otherwise from the embedded assets.
func Load(opts ...Option) (*Dictionary, error) {
	lists := make(map[int][]string, len(Modes))
	for _, mode := range Modes {
		var (
			list []string
			err  error
		)
		if path := os.Getenv(fmt.Sprintf("WORDS_%d_FILE", mode)); path != "" {
			list, err = readWordFile(path)
		} else {
			list, err = assets.WordList(mode)
		}
		if err != nil {
			return nil, fmt.Errorf("words: load %d-letter list: %w", mode, err)
		}
		lists[mode] = list
	}
	return New(lists, opts...)
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadLines(f)
}

func utcToday() string { return time.Now().UTC().Format("2006-01-02") }

// Supported reports whether mode is one of the configured word lengths.
func Supported(mode int) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// NormalizeMode maps unsupported modes to DefaultMode.
func NormalizeMode(mode int) int {
	if Supported(mode) {
		return mode
	}
	return DefaultMode
}

// Upper applies Turkish upper-casing (i→İ, ı→I).
// A new Caser is built per call since casers are not safe for concurrent use.
func Upper(s string) string {
	return cases.Upper(language.Turkish).String(s)
}

// IsTurkish reports whether s is non-empty and made only of upper-case Turkish letters.
func IsTurkish(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

// IsValidWord reports whether word is in the list for mode.
// Empty input and unsupported modes are never valid.
func (d *Dictionary) IsValidWord(word string, mode int) bool {
	if word == "" {
		return false
	}
	set, ok := d.sets[mode]
	if !ok {
		return false
	}
	_, ok = set[Upper(word)]
	return ok
}

// WordList returns the list for mode, or the 5-letter list for unsupported modes.
// The returned slice is shared; callers must not modify it.
func (d *Dictionary) WordList(mode int) []string {
	return d.lists[NormalizeMode(mode)]
}

// DailyWord returns the word of the day for mode.
// An empty dateKey means today, as reported by the configured date source.
func (d *Dictionary) DailyWord(mode int, dateKey string) string {
	if dateKey == "" {
		dateKey = d.today()
	}
	list := d.WordList(mode)
	return list[DailyIndex(mode, dateKey, len(list))]
}

// RandomWord returns a uniformly random word for mode (practice play).
func (d *Dictionary) RandomWord(mode int) string {
	list := d.WordList(mode)
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return list[0]
	}
	return list[n.Int64()]
}

// Stats returns the number of words per mode.
func (d *Dictionary) Stats() map[int]int {
	out := make(map[int]int, len(d.lists))
	for mode, list := range d.lists {
		out[mode] = len(list)
	}
	return out
}

// Seed builds the string hashed for the daily selection.
func Seed(mode int, dateKey string) string {
	return fmt.Sprintf("%s-mode%d-%s", dateKey, mode, seedSalt)
}

// DailyIndex maps (mode, dateKey) onto [0, n).
func DailyIndex(mode int, dateKey string, n int) int {
	if n <= 0 {
		return 0
	}
	// int64 so that |MinInt32| does not overflow.
	h := int64(SeedHash(Seed(mode, dateKey)))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}

// SeedHash is the 31-multiplier polynomial string hash over UTF-16 code units,
// wrapping with 32-bit signed arithmetic.
func SeedHash(s string) int32 {
	var h int32
	for _, cu := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(cu)
	}
	return h
}
