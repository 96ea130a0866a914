package pipeline

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/vodeneevprops/internal/decoder"
	"github.com/Vodeneev/vodeneevprops/internal/export"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/config"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

type stubFetcher struct {
	players    []models.PlayerMarkets
	categories []models.Category
}

func (s *stubFetcher) SearchMarkets(ctx context.Context) ([]models.PlayerMarkets, error) {
	return s.players, nil
}

func (s *stubFetcher) FetchCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories, nil
}

// makePayload builds a markets64 blob: one category token followed by
// line/over/under floats, zlib-compressed and base64-encoded.
func makePayload(t *testing.T, categoryID string, values ...float32) string {
	t.Helper()
	gid := "gid://hs3/Category/" + categoryID
	raw := []byte(strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(gid)), "="))
	for len(raw)%4 != 0 {
		raw = append(raw, 0)
	}
	for _, v := range values {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func encodeCategoryID(gid string) string {
	return strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(gid)), "=")
}

func TestRunnerRun(t *testing.T) {
	dir := t.TempDir()

	catID := encodeCategoryID("gid://hs3/Category/204")
	fetcher := &stubFetcher{
		players: []models.PlayerMarkets{
			{FullName: "Jalen Hurts", Markets64: makePayload(t, "204", 249.5, 150, 70)},
			{FullName: "Broken Payload", Markets64: "!!!not base64!!!"},
			{FullName: "No Markets", Markets64: makePayload(t, "")},
		},
		categories: []models.Category{
			{ID: catID, Name: "Passing Yards", GroupName: "Passing", Sport: "Football"},
		},
	}

	dec, err := decoder.New(decoder.DefaultOptions(), nil)
	require.NoError(t, err)

	runner := NewRunner(
		&config.PipelineConfig{Workers: 2, WriteCSV: true, WriteJSON: true},
		fetcher,
		dec,
		export.NewWriter(dir, true, true),
		nil,
		nil,
	)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.PlayersFetched)
	assert.Equal(t, 2, summary.PlayersDecoded)
	assert.Equal(t, 1, summary.PlayersFailed, "malformed payload is skipped, not fatal")
	assert.Equal(t, 1, summary.Records)
	assert.Equal(t, 1, summary.Categories)
	assert.NotEmpty(t, summary.RunID)

	// Artifacts land in a run directory under the export root.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	runDir := filepath.Join(dir, entries[0].Name())
	for _, name := range []string{"markets_raw.csv", "player_lines.csv", "player_lines_final.json"} {
		_, err := os.Stat(filepath.Join(runDir, name))
		assert.NoErrorf(t, err, "missing artifact %s", name)
	}
}

func TestRunnerRunEmptyBatch(t *testing.T) {
	dec, err := decoder.New(decoder.DefaultOptions(), nil)
	require.NoError(t, err)

	runner := NewRunner(&config.PipelineConfig{}, &stubFetcher{}, dec, nil, nil, nil)
	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.PlayersFetched)
	assert.Zero(t, summary.Records)
}

func TestOptionsFromConfig(t *testing.T) {
	keep := false
	dc := &config.DecoderConfig{
		ByteStride:       8,
		PlausibleMax:     1000,
		KeepEmptyRecords: &keep,
	}

	opts := OptionsFromConfig(dc)
	assert.Equal(t, 8, opts.ByteStride)
	assert.Equal(t, float64(1000), opts.PlausibleMax)
	assert.False(t, opts.KeepEmptyRecords)
	// Unset fields keep decoder defaults.
	assert.Equal(t, decoder.DefaultPlausibleMin, opts.PlausibleMin)
	assert.Equal(t, decoder.DefaultLookaheadWindow, opts.LookaheadWindow)
	assert.Equal(t, decoder.DefaultTokenPattern, opts.TokenPattern)
	assert.Equal(t, decoder.DefaultPriceScale, opts.PriceScale)
}
