package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// register the sqlite3 driver with database/sql.
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"casino-minigames/internal/models"
	"casino-minigames/internal/session"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id            TEXT PRIMARY KEY,
	save_id       TEXT    NOT NULL,
	game          TEXT    NOT NULL DEFAULT '',
	round_id      TEXT    NOT NULL DEFAULT '',
	kind          TEXT    NOT NULL,
	amount        INTEGER NOT NULL,
	balance_after INTEGER NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_save ON transactions (save_id, created_at);
`

// Journal is the append-only record of balance movements, one row per Debit,
// Credit or Grant.
type Journal struct {
	db  *sql.DB
	log *zap.Logger
}

func NewJournal(ctx context.Context, path string, log *zap.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("can't open journal: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("can't connect to journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, journalSchema); err != nil {
		return nil, fmt.Errorf("can't create journal tables: %w", err)
	}

	return &Journal{db: db, log: log.With(zap.String("component", "journal"))}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Record implements session.Recorder. Failures are logged, never returned:
// the balance movement has already happened.
func (j *Journal) Record(e session.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := j.Insert(ctx, e); err != nil {
		j.log.Error("failed to journal transaction",
			zap.String("save_id", e.SaveID),
			zap.String("round_id", e.RoundID),
			zap.Error(err))
	}
}

func (j *Journal) Insert(ctx context.Context, e session.Entry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transactions (id, save_id, game, round_id, kind, amount, balance_after, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		models.GenerateTransactionID(), e.SaveID, e.Game, e.RoundID, string(e.Kind),
		e.Amount, e.BalanceAfter, e.At.UnixMilli(),
	)
	return err
}

// History returns the newest transactions of a save first.
func (j *Journal) History(ctx context.Context, saveID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, save_id, game, round_id, kind, amount, balance_after, created_at
		 FROM transactions WHERE save_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		saveID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		var kind string
		if err := rows.Scan(&tx.ID, &tx.SaveID, &tx.Game, &tx.RoundID, &kind,
			&tx.Amount, &tx.BalanceAfter, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Type = models.TransactionType(kind)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// RoundNet sums credits minus debits for one of a save's rounds. found is
// false when the save journaled nothing under roundID.
func (j *Journal) RoundNet(ctx context.Context, saveID, roundID string) (net int64, found bool, err error) {
	var sum sql.NullInt64
	var rows int64
	err = j.db.QueryRowContext(ctx,
		`SELECT SUM(CASE kind WHEN 'debit' THEN -amount ELSE amount END), COUNT(*)
		 FROM transactions WHERE save_id = ? AND round_id = ?`, saveID, roundID,
	).Scan(&sum, &rows)
	if err != nil {
		return 0, false, fmt.Errorf("failed to sum round: %w", err)
	}
	return sum.Int64, rows > 0, nil
}

func (j *Journal) DeleteSave(ctx context.Context, saveID string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM transactions WHERE save_id = ?`, saveID)
	return err
}
