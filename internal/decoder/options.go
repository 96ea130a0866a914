package decoder

import (
	"fmt"
	"regexp"
)

// DefaultTokenPattern matches an embedded category token: base64 of
// "gid://hs3/Category/<id>". Anchoring on the full literal prefix keeps the
// scan from picking up unrelated base64 runs; a false positive here turns
// into an orphan record downstream, which is worse than a miss.
const DefaultTokenPattern = `Z2lkOi8vaHMzL0NhdGVnb3J5Lz[A-Za-z0-9+/=]+`

// Defaults are reverse-engineered from captured payloads, not documented
// anywhere upstream. Treat them as tunable: when the format drifts, the fix
// is a config change.
const (
	DefaultByteStride      = 4
	DefaultPlausibleMin    = 0.3
	DefaultPlausibleMax    = 400
	DefaultLookaheadWindow = 256
	DefaultPriceScale      = 3.5
)

// Prices between these bounds arrive in the upstream's scaled fixed-point
// representation and must be divided by Options.PriceScale. Values above the
// band are already decimal and pass through.
const (
	scaledBandMin = 10
	scaledBandMax = 100
)

// Options is the immutable decoder configuration, loaded once at startup
// and shared read-only across all payloads.
type Options struct {
	// TokenPattern overrides DefaultTokenPattern when non-empty.
	TokenPattern string
	// ByteStride is the width and alignment step of numeric fields.
	ByteStride int
	// PlausibleMin/PlausibleMax bound |v| for a decoded float to count.
	PlausibleMin float64
	PlausibleMax float64
	// LookaheadWindow is the max bytes searched after a token for its fields.
	LookaheadWindow int
	// KeepEmptyRecords keeps tokens with no decoded values (default true);
	// an identified market with no line is still informative.
	KeepEmptyRecords bool
	// PriceScale divides price-like values inside the scaled band.
	PriceScale float64
}

// DefaultOptions returns the empirically validated defaults.
func DefaultOptions() Options {
	return Options{
		TokenPattern:     DefaultTokenPattern,
		ByteStride:       DefaultByteStride,
		PlausibleMin:     DefaultPlausibleMin,
		PlausibleMax:     DefaultPlausibleMax,
		LookaheadWindow:  DefaultLookaheadWindow,
		KeepEmptyRecords: true,
		PriceScale:       DefaultPriceScale,
	}
}

// Validate rejects configurations the decoder cannot run with. This is the
// only fatal error in the package: it runs once at startup, before any
// payload is touched.
func (o Options) Validate() error {
	if o.ByteStride <= 0 {
		return fmt.Errorf("decoder: byte_stride must be positive, got %d", o.ByteStride)
	}
	if o.PlausibleMin < 0 || o.PlausibleMax <= o.PlausibleMin {
		return fmt.Errorf("decoder: plausible range [%g, %g] is invalid", o.PlausibleMin, o.PlausibleMax)
	}
	if o.LookaheadWindow <= 0 {
		return fmt.Errorf("decoder: lookahead_window must be positive, got %d", o.LookaheadWindow)
	}
	if o.PriceScale <= 0 {
		return fmt.Errorf("decoder: price_scale must be positive, got %g", o.PriceScale)
	}
	if o.TokenPattern != "" {
		if _, err := regexp.Compile(o.TokenPattern); err != nil {
			return fmt.Errorf("decoder: invalid token_pattern: %w", err)
		}
	}
	return nil
}

func (o Options) pattern() *regexp.Regexp {
	if o.TokenPattern == "" {
		return regexp.MustCompile(DefaultTokenPattern)
	}
	return regexp.MustCompile(o.TokenPattern)
}
