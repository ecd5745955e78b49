package models

// Bet amounts are not bound as required: zero and negative stakes reach the
// ledger so the player is told why the bet was refused.

type BlackjackDealRequest struct {
	Amount     int64  `json:"amount"`
	Difficulty string `json:"difficulty"`
}

type MinesStartRequest struct {
	Amount int64 `json:"amount"`
	Mines  int   `json:"mines"`
}

type MinesRevealRequest struct {
	Cell *int `json:"cell" binding:"required"`
}

type CrashStartRequest struct {
	Amount      int64   `json:"amount"`
	AutoCashOut float64 `json:"auto_cash_out"`
}

type PlinkoDropRequest struct {
	Amount int64  `json:"amount"`
	Table  string `json:"table"`
}

type DiceRollRequest struct {
	Amount int64 `json:"amount"`
	Pick   int   `json:"pick"`
}

type HiloStartRequest struct {
	Amount int64 `json:"amount"`
}

type HiloGuessRequest struct {
	Guess string `json:"guess" binding:"required"`
}

type CoinFlipRequest struct {
	Amount int64  `json:"amount"`
	Call   string `json:"call" binding:"required"`
}

type QuotaSpinRequest struct {
	Amount int64 `json:"amount"`
}

type CreateSaveRequest struct {
	Username string `json:"username" binding:"required,max=32"`
}

type ClientSeedRequest struct {
	ClientSeed string `json:"client_seed" binding:"required,max=64"`
}
