package models

type VerificationData struct {
	ClientSeed   string `json:"client_seed"`
	ServerHash   string `json:"server_hash"`
	CurrentNonce int64  `json:"current_nonce"`
}

// RotatedSeed reveals the retired server seed so past rounds can be checked.
type RotatedSeed struct {
	PreviousSeed string           `json:"previous_server_seed"`
	PreviousHash string           `json:"previous_server_hash"`
	Current      VerificationData `json:"current"`
}

type VerifyCrashRequest struct {
	ServerSeed string `json:"server_seed" binding:"required"`
	ServerHash string `json:"server_hash" binding:"required"`
	ClientSeed string `json:"client_seed" binding:"required"`
	Nonce      int64  `json:"nonce"`
}

type VerifyCrashResponse struct {
	CrashPoint float64 `json:"crash_point"`
	Ticks      int     `json:"ticks"`
}

// RevealedSeed is a retired server seed whose rounds have all resolved.
type RevealedSeed struct {
	ServerSeed string `json:"server_seed"`
	ServerHash string `json:"server_hash"`
	RetiredAt  int64  `json:"retired_at"`
}

type RoundNetResponse struct {
	RoundID string `json:"round_id"`
	Net     int64  `json:"net"`
}
