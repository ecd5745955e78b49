package services

import (
	"context"
	"fmt"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/blackjack"
	"casino-minigames/internal/coinflip"
	"casino-minigames/internal/crash"
	"casino-minigames/internal/dice"
	"casino-minigames/internal/hilo"
	"casino-minigames/internal/mines"
	"casino-minigames/internal/models"
	"casino-minigames/internal/plinko"
	"casino-minigames/internal/quota"
)

// acquire loads the save's table and locks it. The caller must unlock.
func (c *Casino) acquire(ctx context.Context, saveID string) (*table, error) {
	t, err := c.table(ctx, saveID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	return t, nil
}

func (c *Casino) DealBlackjack(ctx context.Context, saveID string, stake int64, difficulty string) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	if t.busy(models.GameTypeBlackjack) {
		return View{}, apperror.ErrRoundInProgress
	}
	if difficulty == "" {
		difficulty = c.cfg.Games.BlackjackLevel
	}
	d, err := blackjack.ParseDifficulty(difficulty)
	if err != nil {
		return View{}, err
	}

	p, err := c.begin(ctx, t, models.GameTypeBlackjack)
	if err != nil {
		return View{}, err
	}
	round, err := blackjack.Start(p.ledger, stake, d, p.src)
	if err != nil {
		return View{}, err
	}
	c.placed(ctx, t, p, stake)

	t.blackjack = round
	t.rounds[models.GameTypeBlackjack] = p.info
	return c.view(t, p.info, round.Snapshot()), nil
}

func (c *Casino) HitBlackjack(ctx context.Context, saveID string) (View, error) {
	return c.blackjackAction(ctx, saveID, func(r *blackjack.Round) error {
		_, err := r.Hit()
		return err
	})
}

func (c *Casino) StandBlackjack(ctx context.Context, saveID string) (View, error) {
	return c.blackjackAction(ctx, saveID, (*blackjack.Round).Stand)
}

func (c *Casino) blackjackAction(ctx context.Context, saveID string, action func(*blackjack.Round) error) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	round := t.blackjack
	if round == nil {
		return View{}, apperror.ErrNoActiveRound
	}
	info := t.rounds[models.GameTypeBlackjack]

	if err := action(round); err != nil {
		return View{}, err
	}
	if round.Resolved() {
		c.resolved(info, string(round.Outcome), round.Payout)
	}
	return c.view(t, info, round.Snapshot()), nil
}

func (c *Casino) ResetBlackjack(ctx context.Context, saveID string) error {
	return c.reset(ctx, saveID, models.GameTypeBlackjack, func(t *table) { t.blackjack = nil })
}

func (c *Casino) StartMines(ctx context.Context, saveID string, stake int64, mineCount int) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	if t.busy(models.GameTypeMines) {
		return View{}, apperror.ErrRoundInProgress
	}

	p, err := c.begin(ctx, t, models.GameTypeMines)
	if err != nil {
		return View{}, err
	}
	round, err := mines.Start(p.ledger, stake, mineCount, p.src)
	if err != nil {
		return View{}, err
	}
	c.placed(ctx, t, p, stake)

	t.mines = round
	t.rounds[models.GameTypeMines] = p.info
	return c.view(t, p.info, round.Snapshot()), nil
}

func (c *Casino) RevealMine(ctx context.Context, saveID string, cell int) (View, error) {
	return c.minesAction(ctx, saveID, func(r *mines.Round) error {
		_, err := r.Reveal(cell)
		return err
	})
}

func (c *Casino) CashOutMines(ctx context.Context, saveID string) (View, error) {
	return c.minesAction(ctx, saveID, func(r *mines.Round) error {
		_, err := r.CashOut()
		return err
	})
}

func (c *Casino) minesAction(ctx context.Context, saveID string, action func(*mines.Round) error) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	round := t.mines
	if round == nil {
		return View{}, apperror.ErrNoActiveRound
	}
	info := t.rounds[models.GameTypeMines]

	if err := action(round); err != nil {
		return View{}, err
	}
	if round.Resolved() {
		c.resolved(info, string(round.Status), round.Payout)
	}
	return c.view(t, info, round.Snapshot()), nil
}

func (c *Casino) ResetMines(ctx context.Context, saveID string) error {
	return c.reset(ctx, saveID, models.GameTypeMines, func(t *table) { t.mines = nil })
}

// StartCrash launches a flight that ticks in the background until it crashes
// or is cashed out. autoCashOut is a multiplier such as 2.5; zero disables it.
func (c *Casino) StartCrash(ctx context.Context, saveID string, stake int64, autoCashOut float64) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	if t.busy(models.GameTypeCrash) {
		return View{}, apperror.ErrRoundInProgress
	}

	p, err := c.begin(ctx, t, models.GameTypeCrash)
	if err != nil {
		return View{}, err
	}
	opts := crash.Options{
		AutoCashOut: models.AutoCashOutHundredths(autoCashOut),
		Bands:       c.paytables.Crash,
	}
	round, err := crash.Start(p.ledger, stake, opts, p.src)
	if err != nil {
		return View{}, err
	}
	c.placed(ctx, t, p, stake)

	runner := NewCrashRunner(round, c.cfg.Games.CrashTick)
	t.crash = runner
	t.rounds[models.GameTypeCrash] = p.info

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		runner.Run(c.ctx, func(snap crash.Snapshot) {
			c.broadcaster.BroadcastCrash(saveID, p.info.ID, snap)
			if snap.Status != crash.StatusRunning {
				c.resolved(p.info, string(snap.Status), snap.Payout)
			}
		})
	}()

	return c.view(t, p.info, round.Snapshot()), nil
}

// CashOutCrash requests a cash-out and waits for the tick that settles it.
// The same tick may crash first, in which case the stake is lost.
func (c *Casino) CashOutCrash(ctx context.Context, saveID string) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	runner, info := t.crash, t.rounds[models.GameTypeCrash]
	t.mu.Unlock()

	if runner == nil {
		return View{}, apperror.ErrNoActiveRound
	}
	if err := runner.Round().RequestCashOut(); err != nil {
		return View{}, err
	}
	if err := runner.Wait(ctx); err != nil {
		return View{}, err
	}
	return c.view(t, info, runner.Round().Snapshot()), nil
}

func (c *Casino) CrashState(ctx context.Context, saveID string) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	if t.crash == nil {
		return View{}, apperror.ErrNoActiveRound
	}
	return c.view(t, t.rounds[models.GameTypeCrash], t.crash.Round().Snapshot()), nil
}

func (c *Casino) DropPlinko(ctx context.Context, saveID string, stake int64, tableName string) (View, error) {
	board, err := c.paytables.Plinko.Lookup(tableName)
	if err != nil {
		return View{}, err
	}
	return c.instant(ctx, saveID, models.GameTypePlinko, stake, func(t *table, p play) (any, int64, error) {
		res, err := plinko.Drop(p.ledger, stake, board, p.src)
		return res, res.Payout, err
	})
}

func (c *Casino) RollDice(ctx context.Context, saveID string, stake int64, pick int) (View, error) {
	if pick < dice.MinPick || pick > dice.MaxPick {
		return View{}, fmt.Errorf("%w: got %d", dice.ErrInvalidPick, pick)
	}
	return c.instant(ctx, saveID, models.GameTypeDice, stake, func(t *table, p play) (any, int64, error) {
		res, err := dice.Play(p.ledger, stake, pick, c.paytables.Dice, p.src)
		return res, res.Payout, err
	})
}

func (c *Casino) FlipCoin(ctx context.Context, saveID string, stake int64, call string) (View, error) {
	side, err := coinflip.ParseSide(call)
	if err != nil {
		return View{}, err
	}
	return c.instant(ctx, saveID, models.GameTypeCoinFlip, stake, func(t *table, p play) (any, int64, error) {
		res, err := coinflip.Flip(p.ledger, stake, side, t.coin, p.src)
		return res, res.Payout, err
	})
}

// SpinQuota spins the wheel of the save's quota run. A failed run refuses
// spins until it is reset.
func (c *Casino) SpinQuota(ctx context.Context, saveID string, stake int64) (View, error) {
	return c.instant(ctx, saveID, models.GameTypeQuota, stake, func(t *table, p play) (any, int64, error) {
		res, err := t.quota.Spin(bankroll{Ledger: p.ledger, sess: t.session}, stake, p.src)
		return res, res.Payout, err
	})
}

func (c *Casino) QuotaState(ctx context.Context, saveID string) (quota.Run, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return quota.Run{}, err
	}
	defer t.mu.Unlock()
	return *t.quota, nil
}

func (c *Casino) ResetQuota(ctx context.Context, saveID string) (quota.Run, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return quota.Run{}, err
	}
	defer t.mu.Unlock()

	run, err := quota.NewRun(t.quotaOpts)
	if err != nil {
		return quota.Run{}, err
	}
	t.quota = run
	return *run, nil
}

func (c *Casino) StartHilo(ctx context.Context, saveID string, stake int64) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	if t.busy(models.GameTypeHilo) {
		return View{}, apperror.ErrRoundInProgress
	}

	p, err := c.begin(ctx, t, models.GameTypeHilo)
	if err != nil {
		return View{}, err
	}
	round, err := hilo.Start(p.ledger, stake, t.hiloOpts, p.src)
	if err != nil {
		return View{}, err
	}
	c.placed(ctx, t, p, stake)

	t.hilo = round
	t.rounds[models.GameTypeHilo] = p.info
	return c.view(t, p.info, round.Snapshot()), nil
}

func (c *Casino) GuessHilo(ctx context.Context, saveID, guess string) (View, error) {
	g, err := hilo.ParseGuess(guess)
	if err != nil {
		return View{}, err
	}
	return c.hiloAction(ctx, saveID, func(r *hilo.Round) error {
		_, err := r.Guess(g)
		return err
	})
}

func (c *Casino) CashOutHilo(ctx context.Context, saveID string) (View, error) {
	return c.hiloAction(ctx, saveID, func(r *hilo.Round) error {
		_, err := r.CashOut()
		return err
	})
}

func (c *Casino) hiloAction(ctx context.Context, saveID string, action func(*hilo.Round) error) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	round := t.hilo
	if round == nil {
		return View{}, apperror.ErrNoActiveRound
	}
	info := t.rounds[models.GameTypeHilo]

	if err := action(round); err != nil {
		return View{}, err
	}
	if round.Resolved() {
		c.resolved(info, string(round.Status), round.Payout)
	}
	return c.view(t, info, round.Snapshot()), nil
}

func (c *Casino) ResetHilo(ctx context.Context, saveID string) error {
	return c.reset(ctx, saveID, models.GameTypeHilo, func(t *table) { t.hilo = nil })
}

// instant plays a game that debits, resolves and settles in one call.
func (c *Casino) instant(ctx context.Context, saveID string, game models.GameType, stake int64,
	fn func(*table, play) (any, int64, error)) (View, error) {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return View{}, err
	}
	defer t.mu.Unlock()

	p, err := c.begin(ctx, t, game)
	if err != nil {
		return View{}, err
	}
	state, payout, err := fn(t, p)
	if err != nil {
		return View{}, err
	}
	c.placed(ctx, t, p, stake)
	c.resolved(p.info, outcomeOf(stake, payout), payout)
	return c.view(t, p.info, state), nil
}

// reset discards a game's round. An unresolved round is abandoned and its
// stake is not refunded.
func (c *Casino) reset(ctx context.Context, saveID string, game models.GameType, clear func(*table)) error {
	t, err := c.acquire(ctx, saveID)
	if err != nil {
		return err
	}
	defer t.mu.Unlock()

	if t.busy(game) {
		c.abandoned(t.rounds[game])
	}
	clear(t)
	delete(t.rounds, game)
	return nil
}

var _ quota.Bankroll = bankroll{}
