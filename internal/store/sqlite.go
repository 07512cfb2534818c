package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface on a single SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// WAL keeps readers unblocked while a batch is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Idempotent.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			pay_table TEXT NOT NULL,
			ruleset TEXT NOT NULL,
			variant TEXT NOT NULL DEFAULT '',
			policy TEXT NOT NULL,
			seed TEXT NOT NULL,
			runs INTEGER NOT NULL,
			rounds_per_run INTEGER NOT NULL,
			bet INTEGER NOT NULL DEFAULT 1,
			bankroll REAL NOT NULL DEFAULT 0,
			total_bet REAL NOT NULL DEFAULT 0,
			total_won REAL NOT NULL DEFAULT 0,
			net_mean REAL NOT NULL DEFAULT 0,
			net_stddev REAL NOT NULL DEFAULT 0,
			ruined_runs INTEGER NOT NULL DEFAULT 0,
			excluded INTEGER NOT NULL DEFAULT 0,
			interrupted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL,
			run_index INTEGER NOT NULL,
			seed TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			net REAL NOT NULL,
			ruined INTEGER NOT NULL DEFAULT 0,
			ruin_round INTEGER NOT NULL DEFAULT 0,
			final_bankroll REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (batch_id) REFERENCES batches(id)
		)`,
		`CREATE TABLE IF NOT EXISTS category_counts (
			batch_id TEXT NOT NULL,
			category TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (batch_id, category),
			FOREIGN KEY (batch_id) REFERENCES batches(id)
		)`,
		`CREATE TABLE IF NOT EXISTS strategy_tables (
			id TEXT PRIMARY KEY,
			pay_table TEXT NOT NULL,
			ruleset TEXT NOT NULL,
			overall_return REAL NOT NULL,
			classes INTEGER NOT NULL,
			snapshot_json TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_batch_id ON runs(batch_id, run_index)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_pay_table ON batches(pay_table, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_strategy_tables_pay ON strategy_tables(pay_table, created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("store: migration failed: %w", err)
		}
	}
	return nil
}

// SaveBatch inserts a batch, assigning an ID if empty.
func (s *SQLiteDB) SaveBatch(batch *Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	query := `INSERT INTO batches (
		id, pay_table, ruleset, variant, policy, seed, runs, rounds_per_run,
		bet, bankroll, total_bet, total_won, net_mean, net_stddev,
		ruined_runs, excluded, interrupted
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		batch.ID, batch.PayTable, batch.Ruleset, batch.Variant, batch.Policy,
		batch.Seed, batch.Runs, batch.RoundsPerRun, batch.Bet, batch.Bankroll,
		batch.TotalBet, batch.TotalWon, batch.NetMean, batch.NetStdDev,
		batch.RuinedRuns, batch.Excluded, boolToInt(batch.Interrupted),
	)
	return err
}

// GetBatch retrieves a batch by ID.
func (s *SQLiteDB) GetBatch(id string) (*Batch, error) {
	query := `SELECT
		id, pay_table, ruleset, variant, policy, seed, runs, rounds_per_run,
		bet, bankroll, total_bet, total_won, net_mean, net_stddev,
		ruined_runs, excluded, interrupted, created_at
		FROM batches WHERE id = ?`

	var batch Batch
	var interrupted int
	err := s.db.QueryRow(query, id).Scan(
		&batch.ID, &batch.PayTable, &batch.Ruleset, &batch.Variant, &batch.Policy,
		&batch.Seed, &batch.Runs, &batch.RoundsPerRun, &batch.Bet, &batch.Bankroll,
		&batch.TotalBet, &batch.TotalWon, &batch.NetMean, &batch.NetStdDev,
		&batch.RuinedRuns, &batch.Excluded, &interrupted, &batch.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	batch.Interrupted = interrupted == 1
	return &batch, nil
}

// ListBatches retrieves batches with pagination and filtering.
func (s *SQLiteDB) ListBatches(query BatchQuery) (*BatchList, error) {
	whereClause := ""
	args := []interface{}{}

	switch {
	case query.PayTable != "" && query.Variant != "":
		whereClause = "WHERE pay_table = ? AND variant = ?"
		args = append(args, query.PayTable, query.Variant)
	case query.PayTable != "":
		whereClause = "WHERE pay_table = ?"
		args = append(args, query.PayTable)
	case query.Variant != "":
		whereClause = "WHERE variant = ?"
		args = append(args, query.Variant)
	}

	countQuery := "SELECT COUNT(*) FROM batches " + whereClause
	var totalCount int
	if err := s.db.QueryRow(countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("store: count batches: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT
		id, pay_table, ruleset, variant, policy, seed, runs, rounds_per_run,
		bet, bankroll, total_bet, total_won, net_mean, net_stddev,
		ruined_runs, excluded, interrupted, created_at
		FROM batches ` + whereClause + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, query.PerPage, offset)

	rows, err := s.db.Query(mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var batch Batch
		var interrupted int
		err := rows.Scan(
			&batch.ID, &batch.PayTable, &batch.Ruleset, &batch.Variant, &batch.Policy,
			&batch.Seed, &batch.Runs, &batch.RoundsPerRun, &batch.Bet, &batch.Bankroll,
			&batch.TotalBet, &batch.TotalWon, &batch.NetMean, &batch.NetStdDev,
			&batch.RuinedRuns, &batch.Excluded, &interrupted, &batch.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: scan batch: %w", err)
		}
		batch.Interrupted = interrupted == 1
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate batches: %w", err)
	}

	return &BatchList{
		Batches:    batches,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

// SaveRuns inserts a batch's run summaries in one transaction.
func (s *SQLiteDB) SaveRuns(batchID string, runs []RunRow) error {
	if len(runs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO runs
		(batch_id, run_index, seed, rounds, net, ruined, ruin_round, final_bankroll)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, run := range runs {
		_, err := stmt.Exec(batchID, run.RunIndex, run.Seed, run.Rounds,
			run.Net, boolToInt(run.Ruined), run.RuinRound, run.FinalBankroll)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRuns retrieves run summaries for a batch, ordered by run index.
func (s *SQLiteDB) GetRuns(batchID string, limit, offset int) ([]RunRow, error) {
	query := `SELECT id, batch_id, run_index, seed, rounds, net, ruined, ruin_round, final_bankroll
		FROM runs WHERE batch_id = ?
		ORDER BY run_index LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, batchID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var run RunRow
		var ruined int
		err := rows.Scan(&run.ID, &run.BatchID, &run.RunIndex, &run.Seed,
			&run.Rounds, &run.Net, &ruined, &run.RuinRound, &run.FinalBankroll)
		if err != nil {
			return nil, err
		}
		run.Ruined = ruined == 1
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveCategoryCounts stores a batch's outcome histogram.
func (s *SQLiteDB) SaveCategoryCounts(batchID string, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO category_counts (batch_id, category, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for category, count := range counts {
		if _, err := stmt.Exec(batchID, category, count); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetCategoryCounts retrieves a batch's outcome histogram.
func (s *SQLiteDB) GetCategoryCounts(batchID string) (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT category, count FROM category_counts WHERE batch_id = ?`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// SaveStrategyTable inserts a solved table, assigning an ID if empty.
func (s *SQLiteDB) SaveStrategyTable(table *StrategyTable) error {
	if table.ID == "" {
		table.ID = uuid.New().String()
	}

	_, err := s.db.Exec(`INSERT INTO strategy_tables
		(id, pay_table, ruleset, overall_return, classes, snapshot_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		table.ID, table.PayTable, table.Ruleset, table.OverallReturn,
		table.Classes, table.SnapshotJSON)
	return err
}

// GetStrategyTable retrieves a solved table by ID.
func (s *SQLiteDB) GetStrategyTable(id string) (*StrategyTable, error) {
	return s.scanStrategyTable(s.db.QueryRow(`SELECT
		id, pay_table, ruleset, overall_return, classes, snapshot_json, created_at
		FROM strategy_tables WHERE id = ?`, id))
}

// LatestStrategyTable retrieves the most recent solved table for a paytable.
func (s *SQLiteDB) LatestStrategyTable(payTable string) (*StrategyTable, error) {
	return s.scanStrategyTable(s.db.QueryRow(`SELECT
		id, pay_table, ruleset, overall_return, classes, snapshot_json, created_at
		FROM strategy_tables WHERE pay_table = ?
		ORDER BY created_at DESC LIMIT 1`, payTable))
}

func (s *SQLiteDB) scanStrategyTable(row *sql.Row) (*StrategyTable, error) {
	var table StrategyTable
	err := row.Scan(&table.ID, &table.PayTable, &table.Ruleset,
		&table.OverallReturn, &table.Classes, &table.SnapshotJSON, &table.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
