// Package assets embeds the default word lists shipped with the server.
package assets

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"
)

//go:embed words5.txt words6.txt words7.txt
var FS embed.FS

// ReadLines returns the non-empty, non-comment lines of r, trimmed.
// Case is left alone; callers canonicalise with the alphabet's own rules.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// WordList returns the embedded list for a word length (5, 6 or 7).
func WordList(length int) ([]string, error) {
	f, err := FS.Open(fmt.Sprintf("words%d.txt", length))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}
