package decoder

import (
	"encoding/binary"
	"math"
)

// Candidate is a tentatively decoded numeric field: a stride-aligned buffer
// offset plus the float32 it decodes to. Only plausible values become
// candidates; everything else is dropped at scan time.
type Candidate struct {
	Offset int
	Value  float64
}

// scanCandidates walks the buffer at the configured stride and decodes each
// aligned window as a little-endian float32. The plausibility filter is the
// primary defense against reading structural bytes as betting lines: NaN,
// infinities and out-of-band magnitudes never make it into the sequence.
// Returns candidates in offset order along with scanned/kept counts.
func scanCandidates(buf []byte, o Options) ([]Candidate, int, int) {
	var cands []Candidate
	scanned := 0
	for off := 0; off+4 <= len(buf); off += o.ByteStride {
		scanned++
		v := float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4])))
		if !plausible(v, o.PlausibleMin, o.PlausibleMax) {
			continue
		}
		cands = append(cands, Candidate{Offset: off, Value: round2(v)})
	}
	return cands, scanned, len(cands)
}

func plausible(v, min, max float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	a := math.Abs(v)
	return a >= min && a <= max
}

// round2 rounds to two decimals; raw float32 widened to float64 carries
// noise digits that would make otherwise-equal lines compare unequal.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoleAssignment is the result of mapping a token's window of candidates
// onto record fields. Nil means the role was absent from the window, which
// must stay distinguishable from a decoded zero.
type RoleAssignment struct {
	FinalLine     *float64
	TopOverValue  *float64
	TopUnderValue *float64
}

// RoleAssigner maps the plausible candidates following one token (already
// ordered by offset, already windowed) to roles. It is a strategy so that
// market types with a different field count or order can be supported
// without touching the scanners.
type RoleAssigner func(cands []Candidate, o Options) RoleAssignment

// ThreeFieldRoles is the default strategy: first candidate after the token
// is the line, the next two are the over and under prices, in that order.
// Missing trailing candidates leave their roles nil.
func ThreeFieldRoles(cands []Candidate, o Options) RoleAssignment {
	var ra RoleAssignment
	if len(cands) > 0 {
		ra.FinalLine = ptr(cands[0].Value)
	}
	if len(cands) > 1 {
		ra.TopOverValue = ptr(normalizePrice(cands[1].Value, o.PriceScale))
	}
	if len(cands) > 2 {
		ra.TopUnderValue = ptr(normalizePrice(cands[2].Value, o.PriceScale))
	}
	return ra
}

// normalizePrice converts a price-like value out of the upstream's scaled
// band. Lines pass through untouched (see ThreeFieldRoles); only prices get
// this transform.
func normalizePrice(v, scale float64) float64 {
	a := math.Abs(v)
	if a >= scaledBandMin && a <= scaledBandMax {
		return round2(v / scale)
	}
	return v
}

func ptr(v float64) *float64 { return &v }
