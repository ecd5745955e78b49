package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/blackjack"
	"casino-minigames/internal/coinflip"
	"casino-minigames/internal/config"
	"casino-minigames/internal/crash"
	"casino-minigames/internal/dice"
	"casino-minigames/internal/hilo"
	"casino-minigames/internal/mines"
	"casino-minigames/internal/models"
	"casino-minigames/internal/plinko"
	"casino-minigames/internal/quota"
	"casino-minigames/internal/services"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []string
	balances []int64
	ticks    int
}

func (b *recordingBroadcaster) Notify(_, text string) {
	b.mu.Lock()
	b.messages = append(b.messages, text)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) BroadcastBalance(_ string, balance int64) {
	b.mu.Lock()
	b.balances = append(b.balances, balance)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) BroadcastCrash(string, string, crash.Snapshot) {
	b.mu.Lock()
	b.ticks++
	b.mu.Unlock()
}

func (b *recordingBroadcaster) notified() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

type fixture struct {
	casino  *services.Casino
	store   *services.RedisService
	journal *services.Journal
	hub     *recordingBroadcaster
	saveID  string
}

func newCasino(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Games.CrashTick = time.Millisecond

	store, _ := newRedis(t)
	journal := newJournal(t)
	seeds, err := services.NewSeedManager(0)
	require.NoError(t, err)
	hub := &recordingBroadcaster{}
	paytables := config.DefaultPaytables()
	// short flights keep crash tests fast
	paytables.Crash = crash.Bands{{Below: 0, Hazard: 0.1}}

	casino := services.NewCasino(cfg, services.Deps{
		Store:       store,
		Journal:     journal,
		Seeds:       seeds,
		Metrics:     services.NewMetrics(),
		Broadcaster: hub,
		Paytables:   paytables,
		Log:         zap.NewNop(),
	})
	t.Cleanup(func() { _ = casino.Shutdown(context.Background()) })

	save, err := casino.CreateSave(context.Background(), "ada")
	require.NoError(t, err)

	return &fixture{casino: casino, store: store, journal: journal, hub: hub, saveID: save.ID}
}

func (f *fixture) balance(t *testing.T) int64 {
	t.Helper()
	p, err := f.casino.Profile(context.Background(), f.saveID)
	require.NoError(t, err)
	return p.Balance
}

func TestCasino_LoadAndSave(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	// Given: a loaded save that plays one dice roll
	profile, err := f.casino.LoadSave(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), profile.Balance)
	assert.False(t, profile.Dirty)

	view, err := f.casino.RollDice(ctx, f.saveID, 100, 7)
	require.NoError(t, err)
	res := view.State.(dice.Result)

	// Then: the balance is only in memory until Save
	rec, err := f.store.LoadSave(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), rec.Balance)

	profile, err = f.casino.Save(ctx, f.saveID)
	require.NoError(t, err)
	assert.False(t, profile.Dirty)
	assert.Equal(t, 900+res.Payout, profile.Balance)

	rec, err = f.store.LoadSave(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, 900+res.Payout, rec.Balance)
}

func TestCasino_UnknownSave(t *testing.T) {
	f := newCasino(t)

	_, err := f.casino.LoadSave(context.Background(), "Save_File_99")
	assert.ErrorIs(t, err, apperror.ErrSaveNotFound)

	_, err = f.casino.LoadSave(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, apperror.ErrSaveNotFound)
}

func TestCasino_InvalidBetIsNotifiedAndChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	for _, stake := range []int64{0, -5, 1001} {
		_, err := f.casino.FlipCoin(ctx, f.saveID, stake, "heads")
		require.Error(t, err)
	}

	assert.Equal(t, int64(1000), f.balance(t))
	assert.Len(t, f.hub.notified(), 3)

	txs, err := f.casino.History(ctx, f.saveID, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCasino_StructuralErrorsBeforeDebit(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	_, err := f.casino.RollDice(ctx, f.saveID, 10, 13)
	assert.ErrorIs(t, err, dice.ErrInvalidPick)

	_, err = f.casino.StartMines(ctx, f.saveID, 10, 25)
	assert.ErrorIs(t, err, mines.ErrInvalidMineCount)

	_, err = f.casino.DropPlinko(ctx, f.saveID, 10, "nope")
	assert.ErrorIs(t, err, plinko.ErrUnknownTable)

	_, err = f.casino.DealBlackjack(ctx, f.saveID, 10, "impossible")
	assert.ErrorIs(t, err, blackjack.ErrUnknownDifficulty)

	_, err = f.casino.GuessHilo(ctx, f.saveID, "sideways")
	assert.ErrorIs(t, err, hilo.ErrUnknownGuess)

	assert.Equal(t, int64(1000), f.balance(t))
}

func TestCasino_BlackjackRound(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	// Given: a dealt hand
	view, err := f.casino.DealBlackjack(ctx, f.saveID, 100, "")
	require.NoError(t, err)
	assert.Equal(t, int64(900), view.Balance)
	snap := view.State.(blackjack.Snapshot)
	assert.Equal(t, blackjack.Medium, snap.Difficulty)
	assert.Len(t, snap.Dealer, 1)

	// Then: a second deal is refused while it is open
	_, err = f.casino.DealBlackjack(ctx, f.saveID, 100, "")
	assert.ErrorIs(t, err, apperror.ErrRoundInProgress)

	profile, err := f.casino.Profile(ctx, f.saveID)
	require.NoError(t, err)
	require.Len(t, profile.ActiveRounds, 1)
	assert.Equal(t, view.Round.ID, profile.ActiveRounds[0].ID)

	// When: the player stands
	view, err = f.casino.StandBlackjack(ctx, f.saveID)
	require.NoError(t, err)
	snap = view.State.(blackjack.Snapshot)

	// Then: the round settled exactly once
	assert.Equal(t, blackjack.StatusResolved, snap.Status)
	assert.Equal(t, 900+snap.Payout, view.Balance)
	_, err = f.casino.StandBlackjack(ctx, f.saveID)
	assert.ErrorIs(t, err, apperror.ErrRoundResolved)

	net, err := f.casino.RoundNet(ctx, f.saveID, view.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Payout-100, net.Net)

	_, err = f.casino.DealBlackjack(ctx, f.saveID, 100, "easy")
	assert.NoError(t, err)
}

func TestCasino_ResetAbandonsWithoutRefund(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	_, err := f.casino.StartMines(ctx, f.saveID, 100, 3)
	require.NoError(t, err)

	require.NoError(t, f.casino.ResetMines(ctx, f.saveID))

	assert.Equal(t, int64(900), f.balance(t))
	_, err = f.casino.RevealMine(ctx, f.saveID, 0)
	assert.ErrorIs(t, err, apperror.ErrNoActiveRound)
}

func TestCasino_MinesRound(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	_, err := f.casino.StartMines(ctx, f.saveID, 100, 1)
	require.NoError(t, err)
	_, err = f.casino.CashOutMines(ctx, f.saveID)
	assert.ErrorIs(t, err, mines.ErrNothingRevealed)

	view, err := f.casino.RevealMine(ctx, f.saveID, 12)
	require.NoError(t, err)
	snap := view.State.(mines.Snapshot)

	if snap.Status == mines.StatusDetonated {
		assert.Equal(t, int64(900), view.Balance)
		assert.Contains(t, snap.Mines, 12)
		return
	}

	view, err = f.casino.CashOutMines(ctx, f.saveID)
	require.NoError(t, err)
	snap = view.State.(mines.Snapshot)
	assert.Equal(t, mines.StatusCashedOut, snap.Status)
	// 1 mine, 1 reveal: 25/24 of the stake
	assert.Equal(t, int64(105), snap.Payout)
	assert.Equal(t, int64(1005), view.Balance)
}

func TestCasino_CrashCashOut(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	// Given: a running flight
	view, err := f.casino.StartCrash(ctx, f.saveID, 100, 0)
	require.NoError(t, err)
	roundID := view.Round.ID

	_, err = f.casino.StartCrash(ctx, f.saveID, 100, 0)
	if err != nil {
		assert.ErrorIs(t, err, apperror.ErrRoundInProgress)
	}

	// When: the player cashes out
	view, err = f.casino.CashOutCrash(ctx, f.saveID)
	if err != nil {
		// the flight can crash before the request lands
		assert.ErrorIs(t, err, apperror.ErrRoundResolved)
		view, err = f.casino.CrashState(ctx, f.saveID)
		require.NoError(t, err)
	}
	if view.Round.ID != roundID {
		return
	}

	// Then: the round is resolved and paid at its final multiplier
	snap := view.State.(crash.Snapshot)
	require.NotEqual(t, crash.StatusRunning, snap.Status)
	net, err := f.casino.RoundNet(ctx, f.saveID, roundID)
	require.NoError(t, err)
	assert.Equal(t, snap.Payout-100, net.Net)
}

func TestCasino_CrashAutoCashOutAndVerify(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	// Given: a flight with no cash-out that runs until it crashes
	view, err := f.casino.StartCrash(ctx, f.saveID, 10, 0)
	require.NoError(t, err)
	info := view.Round

	require.Eventually(t, func() bool {
		v, err := f.casino.CrashState(ctx, f.saveID)
		return err == nil && v.State.(crash.Snapshot).Status == crash.StatusCrashed
	}, 5*time.Second, 2*time.Millisecond)
	v, err := f.casino.CrashState(ctx, f.saveID)
	require.NoError(t, err)
	crashedAt := v.State.(crash.Snapshot).CrashPoint

	// When: the seed is revealed
	rotated, err := f.casino.RotateSeed(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, info.ServerSeedHash, rotated.PreviousHash)

	// Then: replaying the round gives the same crash point
	res, err := f.casino.VerifyCrash(models.VerifyCrashRequest{
		ServerSeed: rotated.PreviousSeed,
		ServerHash: info.ServerSeedHash,
		ClientSeed: info.ClientSeed,
		Nonce:      info.Nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, crashedAt, res.CrashPoint)

	_, err = f.casino.StartCrash(ctx, f.saveID, 10, 1.0)
	assert.ErrorIs(t, err, crash.ErrInvalidAutoCashOut)
}

func TestCasino_HiloRound(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	view, err := f.casino.StartHilo(ctx, f.saveID, 100)
	require.NoError(t, err)
	snap := view.State.(hilo.Snapshot)
	assert.Equal(t, 1.0, snap.Multiplier)

	_, err = f.casino.CashOutHilo(ctx, f.saveID)
	assert.ErrorIs(t, err, hilo.ErrNothingWon)

	guess := "higher"
	if snap.Current.Value > 8 {
		guess = "lower"
	}
	view, err = f.casino.GuessHilo(ctx, f.saveID, guess)
	require.NoError(t, err)
	snap = view.State.(hilo.Snapshot)

	if snap.Status == hilo.StatusLost {
		assert.Equal(t, int64(900), view.Balance)
		return
	}
	view, err = f.casino.CashOutHilo(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, int64(1020), view.Balance)
}

func TestCasino_InstantGamesConserveBalance(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	expected := int64(1000)
	for i := 0; i < 20; i++ {
		v, err := f.casino.DropPlinko(ctx, f.saveID, 10, "")
		require.NoError(t, err)
		expected += v.State.(plinko.Result).Payout - 10

		v, err = f.casino.FlipCoin(ctx, f.saveID, 10, "tails")
		require.NoError(t, err)
		expected += v.State.(coinflip.Result).Payout - 10

		assert.Equal(t, expected, v.Balance)
	}

	txs, err := f.casino.History(ctx, f.saveID, 500)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(txs), 40)
}

func TestCasino_QuotaRun(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	run, err := f.casino.QuotaState(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), run.Quota)

	v, err := f.casino.SpinQuota(ctx, f.saveID, 10)
	require.NoError(t, err)
	res := v.State.(quota.Result)
	assert.Equal(t, 1, res.Run.Spins)
	assert.Equal(t, 990+res.Payout, v.Balance)

	run, err = f.casino.ResetQuota(ctx, f.saveID)
	require.NoError(t, err)
	assert.Zero(t, run.Spins)
}

func TestCasino_DeleteSave(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)
	_, err := f.casino.RollDice(ctx, f.saveID, 10, 7)
	require.NoError(t, err)

	require.NoError(t, f.casino.DeleteSave(ctx, f.saveID))

	_, err = f.casino.Profile(ctx, f.saveID)
	assert.ErrorIs(t, err, apperror.ErrSaveNotFound)
	txs, err := f.journal.History(ctx, f.saveID, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCasino_ClientSeedResetsNonce(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	v, err := f.casino.RollDice(ctx, f.saveID, 10, 7)
	require.NoError(t, err)
	assert.Zero(t, v.Round.Nonce)

	data, err := f.casino.SetClientSeed(ctx, f.saveID, "lucky")
	require.NoError(t, err)
	assert.Equal(t, "lucky", data.ClientSeed)
	assert.Zero(t, data.CurrentNonce)

	v, err = f.casino.RollDice(ctx, f.saveID, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, "lucky", v.Round.ClientSeed)
}

func TestCasino_ShutdownStoresUnsavedBalances(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)
	v, err := f.casino.RollDice(ctx, f.saveID, 10, 7)
	require.NoError(t, err)

	require.NoError(t, f.casino.Shutdown(ctx))

	rec, err := f.store.LoadSave(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, v.Balance, rec.Balance)
}

func TestCasino_RotateRefusedWhileRoundsDrawFromSeed(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)
	other, err := f.casino.CreateSave(ctx, "grace")
	require.NoError(t, err)

	// Given: a live mines board committed under the current seed
	view, err := f.casino.StartMines(ctx, f.saveID, 100, 24)
	require.NoError(t, err)
	hash := view.Round.ServerSeedHash

	// When: any save asks for the seed to be revealed
	_, err = f.casino.RotateSeed(ctx, f.saveID)
	assert.ErrorIs(t, err, apperror.ErrRoundInProgress)
	_, err = f.casino.RotateSeed(ctx, other.ID)
	assert.ErrorIs(t, err, apperror.ErrRoundInProgress)

	// Then: the seed stays committed and hidden
	data, err := f.casino.Fairness(ctx, f.saveID)
	require.NoError(t, err)
	assert.Equal(t, hash, data.ServerHash)
	revealed, err := f.casino.RevealedSeeds(ctx, f.saveID)
	require.NoError(t, err)
	assert.Empty(t, revealed)

	// When: the board is abandoned
	require.NoError(t, f.casino.ResetMines(ctx, f.saveID))

	// Then: rotation goes through and the seed opens the board's hash
	rotated, err := f.casino.RotateSeed(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, hash, rotated.PreviousHash)
	revealed, err = f.casino.RevealedSeeds(ctx, f.saveID)
	require.NoError(t, err)
	require.Len(t, revealed, 1)
	assert.Equal(t, rotated.PreviousSeed, revealed[0].ServerSeed)
}

func TestCasino_RotateIgnoresResolvedRounds(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	_, err := f.casino.FlipCoin(ctx, f.saveID, 10, "heads")
	require.NoError(t, err)

	_, err = f.casino.RotateSeed(ctx, f.saveID)
	assert.NoError(t, err)
}

func TestCasino_RoundNetUnknownRound(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	_, err := f.casino.RoundNet(ctx, f.saveID, "dice_missing")

	assert.ErrorIs(t, err, apperror.ErrRoundNotFound)
}

func TestCasino_RecentBets(t *testing.T) {
	ctx := context.Background()
	f := newCasino(t)

	_, err := f.casino.RollDice(ctx, f.saveID, 25, 7)
	require.NoError(t, err)
	_, err = f.casino.FlipCoin(ctx, f.saveID, 0, "heads")
	require.Error(t, err)

	bets, err := f.casino.RecentBets(ctx, f.saveID, 10)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, "dice", bets[0].Game)
	assert.Equal(t, int64(25), bets[0].Amount)
}
