package services

import "time"

const (
	KeySaveFile    = "Save_File_%d"
	KeySavePrefix  = "Save_File_"
	KeySaveSeq     = "saves:seq"
	KeySaveIndex   = "saves:index"
	KeySaveSeed    = "%s:seed"
	KeyRateLimit   = "ratelimit:%s:%s"
	KeyBetPatterns = "patterns:%s:bets"

	TTLBetPatterns = 7 * 24 * time.Hour

	MaxBetPatterns = 50
)
