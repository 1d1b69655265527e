// Package journal appends execution results to a SQLite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "modernc.org/sqlite"

	arbitrageDomain "github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

const createTable = `
CREATE TABLE IF NOT EXISTS executions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	opportunity_id TEXT NOT NULL,
	cycle_id TEXT NOT NULL,
	pair TEXT NOT NULL,
	buy_venue TEXT NOT NULL,
	sell_venue TEXT NOT NULL,
	spread_percent TEXT NOT NULL,
	estimated_profit TEXT NOT NULL,
	strategy TEXT NOT NULL,
	outcome TEXT NOT NULL,
	fell_back INTEGER NOT NULL,
	amount TEXT NOT NULL,
	size_adjusted INTEGER NOT NULL,
	size_fallback INTEGER NOT NULL,
	tx_hash TEXT,
	gas_used INTEGER,
	gas_cost TEXT,
	error_kind TEXT,
	error TEXT,
	completed_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS executions_completed_at ON executions (completed_at);`

const insertStmt = `
INSERT INTO executions (
	opportunity_id, cycle_id, pair, buy_venue, sell_venue, spread_percent,
	estimated_profit, strategy, outcome, fell_back, amount, size_adjusted,
	size_fallback, tx_hash, gas_used, gas_cost, error_kind, error, completed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

// Entry is one journaled execution as read back.
type Entry struct {
	OpportunityID string
	Pair          string
	Strategy      string
	Outcome       string
	FellBack      bool
	Amount        string
	TxHash        string
	ErrorKind     string
	CompletedAt   time.Time
}

// SQLite is an append-only execution journal.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the journal at path.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, journalErr("create directory", err)
		}
	}

	dsn := path
	if !strings.HasPrefix(path, "file:") {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, journalErr("open", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, journalErr("create schema", err)
	}
	return &SQLite{db: db}, nil
}

// Record appends one result.
func (j *SQLite) Record(ctx context.Context, opp arbitrageDomain.Opportunity, res domain.Result) error {
	var (
		txHash  sql.NullString
		gasUsed sql.NullInt64
		gasCost sql.NullString
		errText sql.NullString
	)
	if res.TxHash != (common.Hash{}) {
		txHash = sql.NullString{String: res.TxHash.Hex(), Valid: true}
	}
	if res.GasCost != nil {
		gasUsed = sql.NullInt64{Int64: int64(res.GasCost.GasUsed), Valid: true}
		gasCost = sql.NullString{String: res.GasCost.Native.String(), Valid: true}
	}
	if res.Err != nil {
		errText = sql.NullString{String: res.Err.Error(), Valid: true}
	}

	completed := res.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, insertStmt,
		opp.ID.String(),
		opp.CycleID.String(),
		opp.Pair.String(),
		string(opp.BuyVenue),
		string(opp.SellVenue),
		opp.SpreadPercent.String(),
		opp.EstimatedProfit.String(),
		string(res.Strategy),
		res.Outcome(),
		res.FellBack,
		res.Amount.ToDecimal().String(),
		res.Size.WasAdjusted,
		res.Size.UsedFallback,
		txHash,
		gasUsed,
		gasCost,
		string(res.ErrorKind),
		errText,
		completed.UTC(),
	)
	if err != nil {
		return journalErr("insert", err)
	}
	return nil
}

// Recent returns the latest limit entries, newest first.
func (j *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const selectStmt = `
SELECT opportunity_id, pair, strategy, outcome, fell_back, amount,
	COALESCE(tx_hash, ''), COALESCE(error_kind, ''), completed_at
FROM executions
ORDER BY id DESC
LIMIT ?;`

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, selectStmt, limit)
	if err != nil {
		return nil, journalErr("query", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.OpportunityID, &e.Pair, &e.Strategy, &e.Outcome, &e.FellBack,
			&e.Amount, &e.TxHash, &e.ErrorKind, &e.CompletedAt); err != nil {
			return nil, journalErr("scan", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, journalErr("scan", err)
	}
	return entries, nil
}

// Close closes the database.
func (j *SQLite) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func journalErr(op string, err error) error {
	return apperror.New(apperror.CodeJournalFailed, apperror.WithContext(op), apperror.WithCause(err))
}
