package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
hotstreak:
  sport: "Z2lkOi8vaHMzL1Nwb3J0LzI"
  timeout: 25s
decoder:
  byte_stride: 4
  plausible_max: 400
  keep_empty_records: false
pipeline:
  workers: 4
  timeout: 2m
logging:
  level: info
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HotStreak.RequestTimeout() != 25*time.Second {
		t.Errorf("hotstreak timeout = %v, want 25s", cfg.HotStreak.RequestTimeout())
	}
	if cfg.Pipeline.RunTimeout() != 2*time.Minute {
		t.Errorf("pipeline timeout = %v, want 2m", cfg.Pipeline.RunTimeout())
	}
	if cfg.Decoder.ByteStride != 4 || cfg.Decoder.PlausibleMax != 400 {
		t.Errorf("decoder config = %+v", cfg.Decoder)
	}
	if cfg.Decoder.KeepEmptyRecords == nil || *cfg.Decoder.KeepEmptyRecords {
		t.Error("keep_empty_records should be an explicit false")
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Pipeline.Workers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"30s", 30 * time.Second},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
