package decoder

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Token is one category reference recovered from the buffer. Raw is the
// matched encoded substring (the join key against the category catalog),
// NumericID the trailing id parsed from its decoded form, Offset the
// position of the first matched byte.
type Token struct {
	Raw       string
	NumericID string
	Offset    int
}

var numericIDPattern = regexp.MustCompile(`/Category/(\d+)`)

// scanTokens finds every category token in the buffer, in order of first
// byte occurrence. Duplicates are preserved; the assembler decides what to
// do with them. Tokens whose decoded form yields no numeric id are dropped
// here: an identifier without an id is not joinable and not useful.
func scanTokens(buf []byte, pattern *regexp.Regexp) []Token {
	matches := pattern.FindAllIndex(buf, -1)
	if matches == nil {
		return nil
	}

	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		raw := string(buf[m[0]:m[1]])
		id, ok := numericIDFromToken(raw)
		if !ok {
			continue
		}
		tokens = append(tokens, Token{Raw: raw, NumericID: id, Offset: m[0]})
	}
	return tokens
}

// numericIDFromToken base64-decodes a raw token (re-padding it — the
// payload strips trailing '=') and parses the trailing category id.
func numericIDFromToken(raw string) (string, bool) {
	padded := raw + strings.Repeat("=", (4-len(raw)%4)%4)
	decoded, err := base64.StdEncoding.DecodeString(padded)
	if err != nil {
		return "", false
	}
	m := numericIDPattern.FindSubmatch(decoded)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
