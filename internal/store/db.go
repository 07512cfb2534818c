// Package store persists simulation batches and solved strategy tables, so
// long experiments can be compared across sessions without re-running them.
package store

import (
	"time"
)

// DB is the persistence interface.
type DB interface {
	Close() error
	Migrate() error
	SaveBatch(batch *Batch) error
	GetBatch(id string) (*Batch, error)
	ListBatches(query BatchQuery) (*BatchList, error)
	SaveRuns(batchID string, runs []RunRow) error
	GetRuns(batchID string, limit, offset int) ([]RunRow, error)
	SaveCategoryCounts(batchID string, counts map[string]int64) error
	GetCategoryCounts(batchID string) (map[string]int64, error)
	SaveStrategyTable(table *StrategyTable) error
	GetStrategyTable(id string) (*StrategyTable, error)
	LatestStrategyTable(payTable string) (*StrategyTable, error)
}

// BatchQuery filters and paginates batch listings.
type BatchQuery struct {
	PayTable string `json:"pay_table,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Page     int    `json:"page"`
	PerPage  int    `json:"perPage"`
}

// BatchList is a page of batches.
type BatchList struct {
	Batches    []Batch `json:"batches"`
	TotalCount int     `json:"totalCount"`
	Page       int     `json:"page"`
	PerPage    int     `json:"perPage"`
	TotalPages int     `json:"totalPages"`
}

// Batch is one stored simulation batch: its configuration echo plus the
// merged aggregate.
type Batch struct {
	ID           string    `json:"id" db:"id"`
	PayTable     string    `json:"pay_table" db:"pay_table"`
	Ruleset      string    `json:"ruleset" db:"ruleset"`
	Variant      string    `json:"variant" db:"variant"` // bonus variant, "" for base game
	Policy       string    `json:"policy" db:"policy"`
	Seed         string    `json:"seed" db:"seed"`
	Runs         int       `json:"runs" db:"runs"`
	RoundsPerRun int       `json:"rounds_per_run" db:"rounds_per_run"`
	Bet          int       `json:"bet" db:"bet"`
	Bankroll     float64   `json:"bankroll" db:"bankroll"`
	TotalBet     float64   `json:"total_bet" db:"total_bet"`
	TotalWon     float64   `json:"total_won" db:"total_won"`
	NetMean      float64   `json:"net_mean" db:"net_mean"`
	NetStdDev    float64   `json:"net_stddev" db:"net_stddev"`
	RuinedRuns   int       `json:"ruined_runs" db:"ruined_runs"`
	Excluded     int       `json:"excluded" db:"excluded"`
	Interrupted  bool      `json:"interrupted" db:"interrupted"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RunRow is one run's summary inside a batch.
type RunRow struct {
	ID            int64   `json:"id" db:"id"`
	BatchID       string  `json:"batch_id" db:"batch_id"`
	RunIndex      int     `json:"run_index" db:"run_index"`
	Seed          string  `json:"seed" db:"seed"`
	Rounds        int     `json:"rounds" db:"rounds"`
	Net           float64 `json:"net" db:"net"`
	Ruined        bool    `json:"ruined" db:"ruined"`
	RuinRound     int     `json:"ruin_round" db:"ruin_round"`
	FinalBankroll float64 `json:"final_bankroll" db:"final_bankroll"`
}

// StrategyTable is a stored solved strategy: metadata plus the snapshot
// serialized as JSON.
type StrategyTable struct {
	ID            string    `json:"id" db:"id"`
	PayTable      string    `json:"pay_table" db:"pay_table"`
	Ruleset       string    `json:"ruleset" db:"ruleset"`
	OverallReturn float64   `json:"overall_return" db:"overall_return"`
	Classes       int       `json:"classes" db:"classes"`
	SnapshotJSON  string    `json:"snapshot_json" db:"snapshot_json"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
