// cmd/wordlist/main.go
//
// Builds the words5.txt, words6.txt and words7.txt lists from a frequency list.
//
// Usage:
//   go run ./cmd/wordlist -in tr_50k.txt -out assets
//   cat tr_50k.txt | go run ./cmd/wordlist -out /tmp/lists
//
// Input lines are "word count". Words are upper-cased with Turkish rules and
// kept only when every letter is in the Turkish alphabet.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/addkelime/kelime-server/internal/words"
)

func main() {
	in := flag.String("in", "-", "frequency list to read (- for stdin)")
	out := flag.String("out", "assets", "directory to write words<n>.txt into")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var r io.Reader = os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatal().Err(err).Msg("open input")
		}
		defer f.Close()
		r = f
	}

	lists, err := words.BuildLists(r)
	if err != nil {
		log.Fatal().Err(err).Msg("read frequency list")
	}
	if err := writeLists(*out, lists); err != nil {
		log.Fatal().Err(err).Msg("write lists")
	}
	for _, mode := range words.Modes {
		log.Info().Int("mode", mode).Int("words", len(lists[mode])).Msg("written")
	}
}

func writeLists(dir string, lists map[int][]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, mode := range words.Modes {
		if len(lists[mode]) == 0 {
			return fmt.Errorf("no %d-letter words in input", mode)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "# %d-letter Turkish words, one per line, Turkish upper case.\n", mode)
		for _, w := range lists[mode] {
			b.WriteString(w)
			b.WriteByte('\n')
		}
		path := filepath.Join(dir, fmt.Sprintf("words%d.txt", mode))
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}
