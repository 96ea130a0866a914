// Package decoder recovers structured market records from the markets64
// blob the upstream search endpoint ships per participant. The format is
// proprietary and undocumented; everything here is reverse-engineered from
// captured payloads, so every heuristic (token pattern, stride, plausible
// range, lookahead) is an explicit Options field rather than an inline
// constant. Decoding is a pure, synchronous transformation: one payload in,
// one ordered record sequence out, no state shared between payloads.
package decoder

import (
	"regexp"

	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

// Stats counts what one decode saw. Diagnostic only: discarded candidates
// are not errors, but a sudden spike in them is the first sign of format
// drift.
type Stats struct {
	BufferBytes         int
	TokensFound         int
	CandidatesScanned   int
	CandidatesKept      int
	CandidatesDiscarded int
	EmptyRecords        int
}

// Decoder decodes markets64 payloads using one immutable configuration.
// Safe for concurrent use: Decode touches nothing but its own arguments.
type Decoder struct {
	opts    Options
	pattern *regexp.Regexp
	assign  RoleAssigner
}

// New builds a Decoder after validating opts. assign may be nil, in which
// case ThreeFieldRoles is used.
func New(opts Options, assign RoleAssigner) (*Decoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if assign == nil {
		assign = ThreeFieldRoles
	}
	return &Decoder{opts: opts, pattern: opts.pattern(), assign: assign}, nil
}

// Decode unwraps one payload and extracts its market records. A payload
// with no recognizable tokens yields an empty slice and no error — a player
// with no active markets is a valid result. Only unwrap failures return an
// error (always a *PayloadError).
func (d *Decoder) Decode(playerName, markets64 string) ([]models.MarketRecord, Stats, error) {
	var stats Stats

	buf, err := Unwrap(playerName, markets64)
	if err != nil {
		return nil, stats, err
	}
	stats.BufferBytes = len(buf)

	tokens := scanTokens(buf, d.pattern)
	stats.TokensFound = len(tokens)
	if len(tokens) == 0 {
		return nil, stats, nil
	}

	cands, scanned, kept := scanCandidates(buf, d.opts)
	stats.CandidatesScanned = scanned
	stats.CandidatesKept = kept
	stats.CandidatesDiscarded = scanned - kept

	records := d.assemble(playerName, buf, tokens, cands, &stats)
	return records, stats, nil
}

// assemble pairs tokens with the candidates in their windows and emits one
// record per token. A candidate belongs to exactly one token: the window
// runs from just past the token's offset to the next token's offset (buffer
// end for the last one), further capped by the lookahead bound.
func (d *Decoder) assemble(playerName string, buf []byte, tokens []Token, cands []Candidate, stats *Stats) []models.MarketRecord {
	records := make([]models.MarketRecord, 0, len(tokens))
	ci := 0
	for i, tok := range tokens {
		end := len(buf)
		if i+1 < len(tokens) {
			end = tokens[i+1].Offset
		}
		if bound := tok.Offset + d.opts.LookaheadWindow; bound < end {
			end = bound
		}

		// Candidates are offset-ordered, so a single cursor suffices.
		// Advancing past everything at or before the token's offset also
		// discards leftovers between the previous window's lookahead bound
		// and this token, so no candidate is attributed to two tokens.
		for ci < len(cands) && cands[ci].Offset <= tok.Offset {
			ci++
		}
		start := ci
		for ci < len(cands) && cands[ci].Offset < end {
			ci++
		}
		window := cands[start:ci]

		ra := d.assign(window, d.opts)
		if ra.FinalLine == nil && ra.TopOverValue == nil && ra.TopUnderValue == nil {
			stats.EmptyRecords++
			if !d.opts.KeepEmptyRecords {
				continue
			}
		}

		records = append(records, models.MarketRecord{
			PlayerName:    playerName,
			CategoryID:    tok.Raw,
			NumericID:     tok.NumericID,
			FinalLine:     ra.FinalLine,
			TopOverValue:  ra.TopOverValue,
			TopUnderValue: ra.TopUnderValue,
		})
	}
	return records
}
