package decoder

import (
	"encoding/base64"
	"strings"
	"testing"
)

// encodeToken builds the raw on-wire form of a category token: base64 of
// the gid with trailing padding stripped, as it appears inside payloads.
func encodeToken(gid string) string {
	return strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(gid)), "=")
}

func TestScanTokens(t *testing.T) {
	pattern := DefaultOptions().pattern()
	tok123 := encodeToken("gid://hs3/Category/123")
	tok9 := encodeToken("gid://hs3/Category/9")

	tests := []struct {
		name    string
		buf     string
		wantIDs []string
	}{
		{"empty buffer", "", nil},
		{"no tokens", "just some unrelated bytes with base64 Z2lkOi8vaHMz noise", nil},
		{"single token", "xx" + tok123 + "yy", []string{"123"}},
		{"two tokens in order", tok9 + "\x00\x00" + tok123, []string{"9", "123"}},
		{"duplicate tokens preserved", tok123 + "..." + tok123, []string{"123", "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := scanTokens([]byte(tt.buf), pattern)
			if len(tokens) != len(tt.wantIDs) {
				t.Fatalf("got %d tokens, want %d", len(tokens), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if tokens[i].NumericID != want {
					t.Errorf("token %d: numeric id = %q, want %q", i, tokens[i].NumericID, want)
				}
			}
		})
	}
}

func TestScanTokensOffsets(t *testing.T) {
	pattern := DefaultOptions().pattern()
	tok := encodeToken("gid://hs3/Category/456")
	buf := []byte("abcd" + tok)

	tokens := scanTokens(buf, pattern)
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	if tokens[0].Offset != 4 {
		t.Errorf("offset = %d, want 4", tokens[0].Offset)
	}
	if tokens[0].Raw != tok {
		t.Errorf("raw = %q, want %q", tokens[0].Raw, tok)
	}
}

func TestNumericIDFromToken(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantID string
		wantOK bool
	}{
		{"valid id", encodeToken("gid://hs3/Category/789"), "789", true},
		{"no digits after slash", encodeToken("gid://hs3/Category/:"), "", false},
		{"not base64 at all", "Z2lkOi8vaHMzL0NhdGVnb3J5Lz=====", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := numericIDFromToken(tt.raw)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("numericIDFromToken(%q) = (%q, %v), want (%q, %v)", tt.raw, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}
