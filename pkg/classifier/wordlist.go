package classifier

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pkgz/lgr"
)

// word-list file names expected under an intent's blacklist dir
const (
	firstWordFile = "first_word_blacklist.txt"
	anywhereFile  = "rest_of_words_blacklist.txt"
)

// wordSet is a lowercase membership set
type wordSet map[string]struct{}

func (w wordSet) has(s string) bool {
	_, ok := w[s]
	return ok
}

func makeWordSet(words []string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// loadWordFile reads one term per line, lowercased, skipping blanks.
// A missing file yields an empty set, not an error.
func loadWordFile(path string) wordSet {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if !os.IsNotExist(err) {
			lgr.Printf("[WARN] can't read word list %s: %v", path, err)
		}
		return wordSet{}
	}
	defer f.Close() //nolint:errcheck // read-only file

	set := wordSet{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line != "" {
			set[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		lgr.Printf("[WARN] error scanning word list %s: %v", path, err)
	}
	return set
}

// loadListFile reads one term per line preserving order, for the global
// blacklist and whitelist where order is not significant but slices keep
// the substring-containment semantics simple
func loadListFile(path string) []string {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if !os.IsNotExist(err) {
			lgr.Printf("[WARN] can't read list %s: %v", path, err)
		}
		return nil
	}
	defer f.Close() //nolint:errcheck // read-only file

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line != "" {
			terms = append(terms, line)
		}
	}
	if err := scanner.Err(); err != nil {
		lgr.Printf("[WARN] error scanning list %s: %v", path, err)
	}
	return terms
}

// intentWordLists resolves the two exclusion sets for an intent: file-based
// lists win when a blacklist dir is configured, inline lists otherwise
func intentWordLists(blacklistDir string, firstWord, anywhere []string) (first, any wordSet) {
	if blacklistDir != "" {
		return loadWordFile(filepath.Join(blacklistDir, firstWordFile)),
			loadWordFile(filepath.Join(blacklistDir, anywhereFile))
	}
	return makeWordSet(firstWord), makeWordSet(anywhere)
}
