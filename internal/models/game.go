package models

type GameType string

const (
	GameTypeBlackjack GameType = "blackjack"
	GameTypeMines     GameType = "mines"
	GameTypeCrash     GameType = "crash"
	GameTypePlinko    GameType = "plinko"
	GameTypeDice      GameType = "dice"
	GameTypeHilo      GameType = "hilo"
	GameTypeCoinFlip  GameType = "coinflip"
	GameTypeQuota     GameType = "quota"
)

var GameTypes = []GameType{
	GameTypeBlackjack,
	GameTypeMines,
	GameTypeCrash,
	GameTypePlinko,
	GameTypeDice,
	GameTypeHilo,
	GameTypeCoinFlip,
	GameTypeQuota,
}

func (g GameType) Valid() bool {
	for _, t := range GameTypes {
		if t == g {
			return true
		}
	}
	return false
}

// RoundInfo identifies a round and the provably fair inputs it was drawn from.
type RoundInfo struct {
	ID             string   `json:"id"`
	Game           GameType `json:"game"`
	ServerSeedHash string   `json:"server_seed_hash"`
	ClientSeed     string   `json:"client_seed"`
	Nonce          int64    `json:"nonce"`
	StartedAt      int64    `json:"started_at"`
}
