package services

import (
	"sync"

	"casino-minigames/internal/blackjack"
	"casino-minigames/internal/coinflip"
	"casino-minigames/internal/config"
	"casino-minigames/internal/hilo"
	"casino-minigames/internal/ledger"
	"casino-minigames/internal/mines"
	"casino-minigames/internal/models"
	"casino-minigames/internal/quota"
	"casino-minigames/internal/session"
)

// table is one loaded save. mu serializes actions on its rounds; the session
// has its own lock for the balance.
type table struct {
	mu      sync.Mutex
	session *session.Session

	coin      coinflip.Policy
	quotaOpts quota.Options
	quota     *quota.Run
	hiloOpts  hilo.Options

	rounds    map[models.GameType]models.RoundInfo
	blackjack *blackjack.Round
	mines     *mines.Round
	crash     *CrashRunner
	hilo      *hilo.Round
}

func newTable(sess *session.Session, games config.Games) (*table, error) {
	coin, err := coinflip.NewPolicy(games.CoinPolicy)
	if err != nil {
		return nil, err
	}

	qopts := quota.Options{
		StartQuota:    games.QuotaStart,
		SpinsPerCycle: games.QuotaSpins,
		Growth:        games.QuotaGrowth,
	}
	run, err := quota.NewRun(qopts)
	if err != nil {
		return nil, err
	}

	return &table{
		session:   sess,
		coin:      coin,
		quotaOpts: qopts,
		quota:     run,
		hiloOpts: hilo.Options{
			StartMultiplier: hundredths(games.HiloStart),
			Step:            hundredths(games.HiloStep),
		},
		rounds: make(map[models.GameType]models.RoundInfo),
	}, nil
}

// busy reports whether game has a round that still needs an action.
func (t *table) busy(game models.GameType) bool {
	switch game {
	case models.GameTypeBlackjack:
		return t.blackjack != nil && !t.blackjack.Resolved()
	case models.GameTypeMines:
		return t.mines != nil && !t.mines.Resolved()
	case models.GameTypeCrash:
		return t.crash != nil && !t.crash.Round().Resolved()
	case models.GameTypeHilo:
		return t.hilo != nil && !t.hilo.Resolved()
	}
	return false
}

func (t *table) activeRounds() []models.RoundInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unresolved()
}

// unresolved must be called with mu held.
func (t *table) unresolved() []models.RoundInfo {
	active := []models.RoundInfo{}
	for _, game := range models.GameTypes {
		if t.busy(game) {
			active = append(active, t.rounds[game])
		}
	}
	return active
}

// bankroll lets the quota run read the balance while its movements stay
// tagged with the spin's round.
type bankroll struct {
	ledger.Ledger
	sess *session.Session
}

func (b bankroll) Balance() int64 { return b.sess.Balance() }
