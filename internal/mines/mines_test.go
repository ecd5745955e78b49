package mines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
)

// riggedRound returns a debited round with mines on the given cells.
func riggedRound(t *testing.T, acc *ledger.Account, stake int64, mineCells ...int) *Round {
	t.Helper()
	r, err := Start(acc, stake, len(mineCells), rng.NewSeeded(1))
	require.NoError(t, err)

	r.mines = [Cells]bool{}
	for _, c := range mineCells {
		r.mines[c] = true
	}
	return r
}

func TestBinomial(t *testing.T) {
	assert.Equal(t, 1.0, Binomial(25, 0))
	assert.Equal(t, 25.0, Binomial(25, 1))
	assert.Equal(t, 300.0, Binomial(25, 2))
	assert.Equal(t, 5200300.0, Binomial(25, 12))
	assert.Zero(t, Binomial(5, 6))
}

func TestMultiplier_Example(t *testing.T) {
	m, err := Multiplier(3, 1)

	require.NoError(t, err)
	assert.InDelta(t, 25.0/22.0, m, 1e-12)
	assert.InDelta(t, 1.136, m, 0.001)
}

func TestMultiplier_StartsAtOneAndIncreases(t *testing.T) {
	for mines := 1; mines < Cells; mines++ {
		prev, err := Multiplier(mines, 0)
		require.NoError(t, err)
		require.Equal(t, 1.0, prev)

		for k := 1; k <= Cells-mines; k++ {
			m, err := Multiplier(mines, k)
			require.NoError(t, err)
			require.Greater(t, m, prev, "mines=%d k=%d", mines, k)
			prev = m
		}
	}
}

func TestMultiplier_Extremes(t *testing.T) {
	m, err := Multiplier(24, 1)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, m, 1e-9)

	m, err = Multiplier(1, 24)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, m, 1e-9)
}

func TestMultiplier_Errors(t *testing.T) {
	_, err := Multiplier(0, 1)
	assert.ErrorIs(t, err, ErrInvalidMineCount)

	_, err = Multiplier(25, 0)
	assert.ErrorIs(t, err, ErrInvalidMineCount)

	_, err = Multiplier(3, 23)
	assert.ErrorIs(t, err, ErrRevealOutOfRange)

	_, err = Multiplier(3, -1)
	assert.ErrorIs(t, err, ErrRevealOutOfRange)
}

func TestPlaceMines(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		for _, count := range []int{1, 3, 12, 24} {
			mines, err := PlaceMines(count, rng.NewSeeded(seed))
			require.NoError(t, err)

			n := 0
			for _, m := range mines {
				if m {
					n++
				}
			}
			require.Equal(t, count, n)
		}
	}

	_, err := PlaceMines(25, rng.NewSeeded(1))
	assert.ErrorIs(t, err, ErrInvalidMineCount)
}

func TestPlaceMines_CoversEveryCell(t *testing.T) {
	hits := make([]int, Cells)
	src := rng.NewSeeded(77)

	for i := 0; i < 5000; i++ {
		mines, err := PlaceMines(1, src)
		require.NoError(t, err)
		for c, m := range mines {
			if m {
				hits[c]++
			}
		}
	}

	for c, n := range hits {
		assert.InDelta(t, 200, n, 60, "cell %d", c)
	}
}

func TestStart_ValidatesBeforeDebit(t *testing.T) {
	acc := &ledger.Account{Balance: 50}

	_, err := Start(acc, 10, 0, rng.NewSeeded(1))
	assert.ErrorIs(t, err, ErrInvalidMineCount)

	_, err = Start(acc, 60, 3, rng.NewSeeded(1))
	assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)

	assert.Equal(t, int64(50), acc.Balance)
}

func TestRound_RevealAndCashOut(t *testing.T) {
	// Given: three mines in the first row
	acc := &ledger.Account{Balance: 100}
	r := riggedRound(t, acc, 100, 0, 1, 2)
	assert.Equal(t, int64(0), acc.Balance)

	// When: one safe cell is revealed and the player cashes out
	safe, err := r.Reveal(10)
	require.NoError(t, err)
	require.True(t, safe)

	payout, err := r.CashOut()

	// Then: ceil(100 × 25/22) is credited
	require.NoError(t, err)
	assert.Equal(t, int64(114), payout)
	assert.Equal(t, int64(114), acc.Balance)
	assert.Equal(t, StatusCashedOut, r.Status)

	_, err = r.Reveal(11)
	assert.ErrorIs(t, err, apperror.ErrRoundResolved)
}

func TestRound_Detonation(t *testing.T) {
	acc := &ledger.Account{Balance: 100}
	r := riggedRound(t, acc, 40, 7)

	safe, err := r.Reveal(7)

	require.NoError(t, err)
	assert.False(t, safe)
	assert.Equal(t, StatusDetonated, r.Status)
	assert.Equal(t, 7, r.Detonated)
	assert.Equal(t, int64(60), acc.Balance)

	_, err = r.CashOut()
	assert.ErrorIs(t, err, apperror.ErrRoundResolved)
	assert.Equal(t, []int{7}, r.Snapshot().Mines)
}

func TestRound_RevealErrors(t *testing.T) {
	acc := &ledger.Account{Balance: 100}
	r := riggedRound(t, acc, 10, 0)

	_, err := r.Reveal(25)
	assert.ErrorIs(t, err, ErrCellOutOfRange)

	_, err = r.Reveal(3)
	require.NoError(t, err)
	_, err = r.Reveal(3)
	assert.ErrorIs(t, err, ErrCellRevealed)
	assert.Equal(t, 1, r.Revealed)
}

func TestRound_CashOutNeedsAReveal(t *testing.T) {
	acc := &ledger.Account{Balance: 100}
	r := riggedRound(t, acc, 10, 0)

	_, err := r.CashOut()

	assert.ErrorIs(t, err, ErrNothingRevealed)
	assert.Equal(t, StatusPlaying, r.Status)
}

func TestRound_LastSafeCellCashesOut(t *testing.T) {
	// Given: 24 mines and one safe cell
	acc := &ledger.Account{Balance: 10}
	mineCells := make([]int, 0, 24)
	for i := 1; i < Cells; i++ {
		mineCells = append(mineCells, i)
	}
	r := riggedRound(t, acc, 10, mineCells...)

	// When: the safe cell is revealed
	safe, err := r.Reveal(0)

	// Then: the round settles at 25x without an explicit cash-out
	require.NoError(t, err)
	assert.True(t, safe)
	assert.Equal(t, StatusCashedOut, r.Status)
	assert.Equal(t, int64(250), acc.Balance)
	assert.Zero(t, r.NextMultiplier())
}

func TestRound_SnapshotHidesMinesWhilePlaying(t *testing.T) {
	acc := &ledger.Account{Balance: 100}
	r := riggedRound(t, acc, 10, 4, 9)

	s := r.Snapshot()

	assert.Empty(t, s.Mines)
	assert.Len(t, s.Cells, Cells)
	assert.Equal(t, 1.0, s.Multiplier)
	assert.InDelta(t, 25.0/23.0, s.NextMultiplier, 1e-12)
}
