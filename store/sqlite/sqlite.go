/*
Package sqlite provides SQLite-backed persistence for simulation scenarios.

PURPOSE:
  Stores named scenarios (rates, end date, basis) and their injections
  so simulations can be reloaded, edited and re-run. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  scenarios:  One row per named scenario, config stored as JSON plus
              denormalized rate columns for listing
  injections: One row per capital injection, updated by whole-record
              replacement keyed by (scenario_id, id)
  runs:       Summary of each executed simulation, for history views

DECIMAL STORAGE:
  Monetary values and percentages are stored as TEXT and parsed back
  through decimal.NewFromString, never as REAL, to keep exact values.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/cca.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - factory/scenario.go: The JSON document stored in config_json
  - api/handlers.go: HTTP surface over this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/cca-simulator/engine"
)

// Store persists scenarios, injections and run history using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Named scenarios
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		annual_rate_pct TEXT NOT NULL,
		vat_rate_pct TEXT NOT NULL,
		withholding_moral_pct TEXT NOT NULL,
		withholding_natural_pct TEXT NOT NULL,
		end_date TEXT NOT NULL,
		basis TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Capital injections, one row per part-split contribution
	CREATE TABLE IF NOT EXISTS injections (
		scenario_id TEXT NOT NULL,
		id TEXT NOT NULL,
		label TEXT,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		amount TEXT NOT NULL,
		part1_pct TEXT NOT NULL,
		part1_class TEXT NOT NULL,
		part2_class TEXT NOT NULL,
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (scenario_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_injections_scenario
		ON injections(scenario_id, position);

	-- Executed simulation runs (summary only, for history views)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL,
		basis TEXT NOT NULL,
		capital TEXT NOT NULL,
		interest TEXT NOT NULL,
		vat TEXT NOT NULL,
		withholding TEXT NOT NULL,
		net TEXT NOT NULL,
		total_repayment TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_scenario
		ON runs(scenario_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCENARIO STORE
// =============================================================================

// ScenarioRecord is a stored scenario with its JSON config.
type ScenarioRecord struct {
	ID                    string
	Name                  string
	AnnualRatePct         decimal.Decimal
	VATRatePct            decimal.Decimal
	WithholdingMoralPct   decimal.Decimal
	WithholdingNaturalPct decimal.Decimal
	EndDate               time.Time
	Basis                 string
	ConfigJSON            string
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// SaveScenario inserts or updates a scenario record.
func (s *Store) SaveScenario(ctx context.Context, sc ScenarioRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO scenarios (id, name, annual_rate_pct, vat_rate_pct,
			withholding_moral_pct, withholding_natural_pct, end_date, basis,
			config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			annual_rate_pct = excluded.annual_rate_pct,
			vat_rate_pct = excluded.vat_rate_pct,
			withholding_moral_pct = excluded.withholding_moral_pct,
			withholding_natural_pct = excluded.withholding_natural_pct,
			end_date = excluded.end_date,
			basis = excluded.basis,
			config_json = excluded.config_json,
			version = scenarios.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		sc.ID, sc.Name,
		sc.AnnualRatePct.String(), sc.VATRatePct.String(),
		sc.WithholdingMoralPct.String(), sc.WithholdingNaturalPct.String(),
		sc.EndDate.Format(time.RFC3339), sc.Basis,
		// New rows always start at version 1; the caller's Version
		// field is output-only.
		sc.ConfigJSON, 1, now, now,
	)
	return err
}

// GetScenario retrieves a scenario by ID. Returns nil when missing.
func (s *Store) GetScenario(ctx context.Context, id string) (*ScenarioRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sc                            ScenarioRecord
		annual, vat, wMoral, wNatural string
		endDate, createdAt, updatedAt string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, annual_rate_pct, vat_rate_pct, withholding_moral_pct,
		        withholding_natural_pct, end_date, basis, config_json, version,
		        created_at, updated_at
		 FROM scenarios WHERE id = ?`,
		id,
	).Scan(&sc.ID, &sc.Name, &annual, &vat, &wMoral, &wNatural,
		&endDate, &sc.Basis, &sc.ConfigJSON, &sc.Version, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sc.AnnualRatePct = engine.MustParseDecimal(annual)
	sc.VATRatePct = engine.MustParseDecimal(vat)
	sc.WithholdingMoralPct = engine.MustParseDecimal(wMoral)
	sc.WithholdingNaturalPct = engine.MustParseDecimal(wNatural)
	sc.EndDate, _ = time.Parse(time.RFC3339, endDate)
	sc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &sc, nil
}

// ListScenarios returns all scenarios ordered by name.
func (s *Store) ListScenarios(ctx context.Context) ([]ScenarioRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, annual_rate_pct, vat_rate_pct, withholding_moral_pct,
		        withholding_natural_pct, end_date, basis, config_json, version,
		        created_at, updated_at
		 FROM scenarios ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenarios []ScenarioRecord
	for rows.Next() {
		var (
			sc                            ScenarioRecord
			annual, vat, wMoral, wNatural string
			endDate, createdAt, updatedAt string
		)
		if err := rows.Scan(&sc.ID, &sc.Name, &annual, &vat, &wMoral, &wNatural,
			&endDate, &sc.Basis, &sc.ConfigJSON, &sc.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		sc.AnnualRatePct = engine.MustParseDecimal(annual)
		sc.VATRatePct = engine.MustParseDecimal(vat)
		sc.WithholdingMoralPct = engine.MustParseDecimal(wMoral)
		sc.WithholdingNaturalPct = engine.MustParseDecimal(wNatural)
		sc.EndDate, _ = time.Parse(time.RFC3339, endDate)
		sc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		scenarios = append(scenarios, sc)
	}
	return scenarios, rows.Err()
}

// DeleteScenario removes a scenario and its injections.
func (s *Store) DeleteScenario(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM injections WHERE scenario_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// INJECTION STORE
// =============================================================================

// InjectionRecord is a stored capital injection.
type InjectionRecord struct {
	ScenarioID string
	ID         string
	Label      string
	Month      int
	Year       int
	Amount     decimal.Decimal
	Part1Pct   decimal.Decimal
	Part1Class string
	Part2Class string
	Position   int
	CreatedAt  time.Time
}

// ReplaceInjection inserts or fully replaces an injection record. An
// existing record keeps its position; a new one appends at the end.
func (s *Store) ReplaceInjection(ctx context.Context, in InjectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var position int
	err := s.db.QueryRowContext(ctx,
		"SELECT position FROM injections WHERE scenario_id = ? AND id = ?",
		in.ScenarioID, in.ID,
	).Scan(&position)
	if err == sql.ErrNoRows {
		if err := s.db.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), -1) + 1 FROM injections WHERE scenario_id = ?",
			in.ScenarioID,
		).Scan(&position); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	query := `
		INSERT INTO injections (scenario_id, id, label, month, year, amount,
			part1_pct, part1_class, part2_class, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scenario_id, id) DO UPDATE SET
			label = excluded.label,
			month = excluded.month,
			year = excluded.year,
			amount = excluded.amount,
			part1_pct = excluded.part1_pct,
			part1_class = excluded.part1_class,
			part2_class = excluded.part2_class
	`

	_, err = s.db.ExecContext(ctx, query,
		in.ScenarioID, in.ID, in.Label, in.Month, in.Year,
		in.Amount.String(), in.Part1Pct.String(),
		in.Part1Class, in.Part2Class, position,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetInjections returns a scenario's injections in stored order.
func (s *Store) GetInjections(ctx context.Context, scenarioID string) ([]InjectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT scenario_id, id, label, month, year, amount, part1_pct,
		        part1_class, part2_class, position, created_at
		 FROM injections
		 WHERE scenario_id = ?
		 ORDER BY position ASC`,
		scenarioID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var injections []InjectionRecord
	for rows.Next() {
		var (
			in               InjectionRecord
			amount, part1Pct string
			label            sql.NullString
			createdAt        string
		)
		if err := rows.Scan(&in.ScenarioID, &in.ID, &label, &in.Month, &in.Year,
			&amount, &part1Pct, &in.Part1Class, &in.Part2Class, &in.Position, &createdAt); err != nil {
			return nil, err
		}
		in.Label = label.String
		in.Amount = engine.MustParseDecimal(amount)
		in.Part1Pct = engine.MustParseDecimal(part1Pct)
		in.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		injections = append(injections, in)
	}
	return injections, rows.Err()
}

// DeleteInjection removes one injection from a scenario.
func (s *Store) DeleteInjection(ctx context.Context, scenarioID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM injections WHERE scenario_id = ? AND id = ?", scenarioID, id)
	return err
}

// PruneInjections deletes a scenario's injections not listed in keep,
// so re-saving a smaller document leaves no stale rows behind.
func (s *Store) PruneInjections(ctx context.Context, scenarioID string, keep []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keep) == 0 {
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM injections WHERE scenario_id = ?", scenarioID)
		return err
	}

	placeholders := strings.Repeat("?,", len(keep))
	query := fmt.Sprintf(
		"DELETE FROM injections WHERE scenario_id = ? AND id NOT IN (%s)",
		placeholders[:len(placeholders)-1],
	)
	args := make([]any, 0, len(keep)+1)
	args = append(args, scenarioID)
	for _, id := range keep {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// =============================================================================
// RUN HISTORY
// =============================================================================

// RunRecord is a stored simulation run summary.
type RunRecord struct {
	ID             string
	ScenarioID     string
	Basis          string
	Capital        decimal.Decimal
	Interest       decimal.Decimal
	VAT            decimal.Decimal
	Withholding    decimal.Decimal
	Net            decimal.Decimal
	TotalRepayment decimal.Decimal
	CreatedAt      time.Time
}

// SaveRun appends a run summary to the history.
func (s *Store) SaveRun(ctx context.Context, r RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO runs (id, scenario_id, basis, capital, interest, vat,
			withholding, net, total_repayment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ScenarioID, r.Basis,
		r.Capital.String(), r.Interest.String(), r.VAT.String(),
		r.Withholding.String(), r.Net.String(), r.TotalRepayment.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil && isUniqueConstraintError(err) {
		return fmt.Errorf("run %s already recorded", r.ID)
	}
	return err
}

// GetRuns returns a scenario's run history, newest first.
func (s *Store) GetRuns(ctx context.Context, scenarioID string, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scenario_id, basis, capital, interest, vat, withholding,
		        net, total_repayment, created_at
		 FROM runs
		 WHERE scenario_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		scenarioID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			r                                               RunRecord
			capital, interest, vat, withholding, net, total string
			createdAt                                       string
		)
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.Basis, &capital, &interest,
			&vat, &withholding, &net, &total, &createdAt); err != nil {
			return nil, err
		}
		r.Capital = engine.MustParseDecimal(capital)
		r.Interest = engine.MustParseDecimal(interest)
		r.VAT = engine.MustParseDecimal(vat)
		r.Withholding = engine.MustParseDecimal(withholding)
		r.Net = engine.MustParseDecimal(net)
		r.TotalRepayment = engine.MustParseDecimal(total)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"runs", "injections", "scenarios"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
