// Package pipeline sequences one full run: fetch markets and categories,
// decode every payload, join, export, persist, notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vodeneev/vodeneevprops/internal/decoder"
	"github.com/Vodeneev/vodeneevprops/internal/export"
	"github.com/Vodeneev/vodeneevprops/internal/join"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/config"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/notify"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/storage"
)

const defaultWorkers = 8

// MarketsFetcher is the upstream boundary: something that can deliver the
// markets64 payloads and the category catalog.
type MarketsFetcher interface {
	SearchMarkets(ctx context.Context) ([]models.PlayerMarkets, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

// OptionsFromConfig maps the yaml decoder section onto decoder.Options,
// filling defaults for everything left unset.
func OptionsFromConfig(dc *config.DecoderConfig) decoder.Options {
	opts := decoder.DefaultOptions()
	if dc.TokenPattern != "" {
		opts.TokenPattern = dc.TokenPattern
	}
	if dc.ByteStride != 0 {
		opts.ByteStride = dc.ByteStride
	}
	if dc.PlausibleMin != 0 {
		opts.PlausibleMin = dc.PlausibleMin
	}
	if dc.PlausibleMax != 0 {
		opts.PlausibleMax = dc.PlausibleMax
	}
	if dc.LookaheadWindow != 0 {
		opts.LookaheadWindow = dc.LookaheadWindow
	}
	if dc.KeepEmptyRecords != nil {
		opts.KeepEmptyRecords = *dc.KeepEmptyRecords
	}
	if dc.PriceScale != 0 {
		opts.PriceScale = dc.PriceScale
	}
	return opts
}

// Runner owns one configured pipeline. Storage and notifier are optional;
// nil disables the corresponding stage.
type Runner struct {
	cfg      *config.PipelineConfig
	fetcher  MarketsFetcher
	decoder  *decoder.Decoder
	writer   *export.Writer
	storage  storage.LinesStorage
	notifier *notify.TelegramNotifier
}

func NewRunner(cfg *config.PipelineConfig, fetcher MarketsFetcher, dec *decoder.Decoder, writer *export.Writer, store storage.LinesStorage, notifier *notify.TelegramNotifier) *Runner {
	return &Runner{
		cfg:      cfg,
		fetcher:  fetcher,
		decoder:  dec,
		writer:   writer,
		storage:  store,
		notifier: notifier,
	}
}

// Run executes one full pipeline run. Per-payload decode failures are
// logged and counted, never fatal; only fetch or artifact failures abort.
func (r *Runner) Run(ctx context.Context) (models.RunSummary, error) {
	summary := models.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := slog.With("run_id", summary.RunID)

	if timeout := r.cfg.RunTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Info("Fetching markets...")
	players, err := r.fetcher.SearchMarkets(ctx)
	if err != nil {
		r.notifier.NotifyFailure(summary.RunID, err)
		return summary, fmt.Errorf("fetch markets: %w", err)
	}
	summary.PlayersFetched = len(players)
	log.Info("Markets fetched", "players", len(players))

	log.Info("Fetching category catalog...")
	categories, err := r.fetcher.FetchCategories(ctx)
	if err != nil {
		r.notifier.NotifyFailure(summary.RunID, err)
		return summary, fmt.Errorf("fetch categories: %w", err)
	}
	catalog := join.NewCatalog(categories)
	summary.Categories = catalog.Len()
	log.Info("Categories fetched", "count", catalog.Len())

	records, failed := r.decodeAll(ctx, players)
	summary.PlayersDecoded = len(players) - failed
	summary.PlayersFailed = failed
	summary.Records = len(records)
	log.Info("Payloads decoded", "records", len(records), "failed_players", failed)

	lines := catalog.Lines(records)
	rows := join.FinalRows(lines)

	if r.writer != nil {
		dir, err := r.writer.WriteRun(summary.RunID, summary.StartedAt, players, lines, rows)
		if err != nil {
			r.notifier.NotifyFailure(summary.RunID, err)
			return summary, fmt.Errorf("write artifacts: %w", err)
		}
		log.Info("Artifacts written", "dir", dir)
	}

	if r.storage != nil {
		if err := r.storage.SaveLines(ctx, summary.RunID, lines); err != nil {
			r.notifier.NotifyFailure(summary.RunID, err)
			return summary, fmt.Errorf("save lines: %w", err)
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	r.notifier.NotifyRun(summary)
	log.Info("Run finished", "duration", summary.Duration, "records", summary.Records)
	return summary, nil
}

// decodeAll decodes every payload across a worker pool. Decoding is pure
// and payloads share nothing, so workers need no coordination beyond the
// job feed; results keep the input order regardless of scheduling.
func (r *Runner) decodeAll(ctx context.Context, players []models.PlayerMarkets) ([]models.MarketRecord, int) {
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(players) {
		workers = len(players)
	}
	if workers == 0 {
		return nil, 0
	}

	perPlayer := make([][]models.MarketRecord, len(players))
	failures := make([]bool, len(players))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := players[i]
				records, stats, err := r.decoder.Decode(p.FullName, p.Markets64)
				if err != nil {
					var pe *decoder.PayloadError
					if errors.As(err, &pe) {
						slog.Warn("Skipping undecodable payload", "player", pe.Player, "stage", pe.Stage, "error", pe.Err)
					} else {
						slog.Warn("Skipping payload", "player", p.FullName, "error", err)
					}
					failures[i] = true
					continue
				}
				if stats.CandidatesDiscarded > 0 {
					slog.Debug("Implausible values discarded",
						"player", p.FullName,
						"discarded", stats.CandidatesDiscarded,
						"kept", stats.CandidatesKept,
						"tokens", stats.TokensFound)
				}
				perPlayer[i] = records
			}
		}()
	}

	for i := range players {
		select {
		case <-ctx.Done():
			// Stop feeding; in-flight decodes finish in microseconds.
			close(jobs)
			wg.Wait()
			return flatten(perPlayer), countTrue(failures)
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return flatten(perPlayer), countTrue(failures)
}

func flatten(perPlayer [][]models.MarketRecord) []models.MarketRecord {
	var total int
	for _, rs := range perPlayer {
		total += len(rs)
	}
	records := make([]models.MarketRecord, 0, total)
	for _, rs := range perPlayer {
		records = append(records, rs...)
	}
	return records
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
