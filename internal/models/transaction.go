package models

type TransactionType string

const (
	TransactionTypeBet     TransactionType = "debit"
	TransactionTypeWin     TransactionType = "credit"
	TransactionTypeSubsidy TransactionType = "subsidy"
)

// Transaction is one journaled balance movement.
type Transaction struct {
	ID           string          `json:"id"`
	SaveID       string          `json:"save_id"`
	Game         string          `json:"game,omitempty"`
	RoundID      string          `json:"round_id,omitempty"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	CreatedAt    int64           `json:"created_at"`
}

// BetPattern is one entry of a save's recent bets, newest first.
type BetPattern struct {
	Game      string `json:"game"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}
