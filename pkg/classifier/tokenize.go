package classifier

import "regexp"

// token boundaries are inserted between adjacent letter and digit runs, so
// "iphone12" tokenizes as "iphone", "12". Punctuation, hyphens and
// underscores act as separators and never appear in tokens.
var tokenRe = regexp.MustCompile(`[a-zA-Z]+|\d+`)

// Tokenize splits a title into lowercase tokens
func Tokenize(s string) []string {
	tokens := tokenRe.FindAllString(s, -1)
	for i, tok := range tokens {
		tokens[i] = lower(tok)
	}
	return tokens
}

// lower is an ASCII-only lowercase, enough for token runs which are
// ASCII letters and digits by construction
func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
