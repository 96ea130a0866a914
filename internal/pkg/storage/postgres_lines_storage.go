package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/vodeneevprops/internal/pkg/config"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

// LinesStorage persists joined player lines per pipeline run.
type LinesStorage interface {
	SaveLines(ctx context.Context, runID string, lines []models.PlayerLine) error
	Close() error
}

// Ensure PostgresLinesStorage implements LinesStorage
var _ LinesStorage = (*PostgresLinesStorage)(nil)

// PostgresLinesStorage stores player lines in PostgreSQL.
type PostgresLinesStorage struct {
	db *sql.DB
}

// NewPostgresLinesStorage opens the connection, verifies it and creates the
// schema if needed.
func NewPostgresLinesStorage(cfg *config.PostgresConfig) (*PostgresLinesStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	storage := &PostgresLinesStorage{db: db}
	if err := storage.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL lines storage initialized")
	return storage, nil
}

func (s *PostgresLinesStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS player_lines (
		id SERIAL PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL,
		player_name VARCHAR(200) NOT NULL,
		category_id VARCHAR(200) NOT NULL,
		numeric_id VARCHAR(50) NOT NULL,
		category_name VARCHAR(200) NOT NULL DEFAULT '',
		group_name VARCHAR(200) NOT NULL DEFAULT '',
		sport VARCHAR(100) NOT NULL DEFAULT '',
		final_line DECIMAL(10, 2),
		top_over_value DECIMAL(10, 2),
		top_under_value DECIMAL(10, 2),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_player_lines_run_id ON player_lines(run_id);
	CREATE INDEX IF NOT EXISTS idx_player_lines_player ON player_lines(player_name);
	CREATE INDEX IF NOT EXISTS idx_player_lines_category ON player_lines(category_id);
	CREATE INDEX IF NOT EXISTS idx_player_lines_created_at ON player_lines(created_at DESC);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// SaveLines inserts all lines of one run in a single transaction.
func (s *PostgresLinesStorage) SaveLines(ctx context.Context, runID string, lines []models.PlayerLine) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_lines (
			run_id, player_name, category_id, numeric_id,
			category_name, group_name, sport,
			final_line, top_over_value, top_under_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range lines {
		_, err := stmt.ExecContext(ctx,
			runID, l.PlayerName, l.CategoryID, l.NumericID,
			l.CategoryName, l.GroupName, l.Sport,
			nullFloat(l.FinalLine), nullFloat(l.TopOverValue), nullFloat(l.TopUnderValue),
		)
		if err != nil {
			return fmt.Errorf("insert line for %s/%s: %w", l.PlayerName, l.NumericID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("Saved player lines", "run_id", runID, "count", len(lines))
	return nil
}

func (s *PostgresLinesStorage) Close() error {
	return s.db.Close()
}

// nullFloat maps an absent value to SQL NULL; absence must never turn into
// a stored zero.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
