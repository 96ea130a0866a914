// Package export writes run artifacts: the raw markets snapshot, the joined
// player lines, and the final downstream JSON. Every run gets its own
// timestamped directory so consecutive runs never clobber each other.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

const runDirTimeFormat = "2006-01-02_15-04-05"

type Writer struct {
	baseDir   string
	writeCSV  bool
	writeJSON bool
}

func NewWriter(baseDir string, writeCSV, writeJSON bool) *Writer {
	if baseDir == "" {
		baseDir = "data"
	}
	return &Writer{baseDir: baseDir, writeCSV: writeCSV, writeJSON: writeJSON}
}

// WriteRun persists one run's artifacts and returns the run directory.
func (w *Writer) WriteRun(runID string, startedAt time.Time, players []models.PlayerMarkets, lines []models.PlayerLine, rows []models.FinalLineRow) (string, error) {
	dir := filepath.Join(w.baseDir, fmt.Sprintf("%s_%s", startedAt.UTC().Format(runDirTimeFormat), shortID(runID)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}

	if w.writeCSV {
		if err := w.writeMarketsCSV(filepath.Join(dir, "markets_raw.csv"), players); err != nil {
			return "", err
		}
		if err := w.writeLinesCSV(filepath.Join(dir, "player_lines.csv"), lines); err != nil {
			return "", err
		}
	}
	if w.writeJSON {
		if err := writeJSONFile(filepath.Join(dir, "player_lines_final.json"), rows); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func (w *Writer) writeMarketsCSV(path string, players []models.PlayerMarkets) error {
	return writeCSVFile(path, []string{"firstName", "fullName", "markets64"}, len(players), func(i int) []string {
		p := players[i]
		return []string{p.FirstName, p.FullName, p.Markets64}
	})
}

func (w *Writer) writeLinesCSV(path string, lines []models.PlayerLine) error {
	header := []string{"fullName", "category_id", "numeric_id", "category_name", "group", "sport", "final_line", "top_over_value", "top_under_value"}
	return writeCSVFile(path, header, len(lines), func(i int) []string {
		l := lines[i]
		return []string{
			l.PlayerName, l.CategoryID, l.NumericID,
			l.CategoryName, l.GroupName, l.Sport,
			formatOptional(l.FinalLine), formatOptional(l.TopOverValue), formatOptional(l.TopUnderValue),
		}
	})
}

func writeCSVFile(path string, header []string, n int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", filepath.Base(path), err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("write %s row: %w", filepath.Base(path), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// formatOptional renders a nullable float for CSV: absent stays an empty
// cell, it must not become "0".
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
