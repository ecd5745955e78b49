package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino-minigames/internal/apperror"
)

func TestAccount_Debit(t *testing.T) {
	t.Run("debits within balance", func(t *testing.T) {
		acc := &Account{Balance: 100}

		require.NoError(t, acc.Debit(40))

		assert.Equal(t, int64(60), acc.Balance)
		assert.Equal(t, int64(40), acc.Debited)
	})

	t.Run("rejects non-positive bet without mutation", func(t *testing.T) {
		acc := &Account{Balance: 100}

		assert.ErrorIs(t, acc.Debit(0), apperror.ErrInvalidBet)
		assert.ErrorIs(t, acc.Debit(-5), apperror.ErrInvalidBet)
		assert.Equal(t, int64(100), acc.Balance)
	})

	t.Run("rejects bet above balance without mutation", func(t *testing.T) {
		acc := &Account{Balance: 100}

		assert.ErrorIs(t, acc.Debit(101), apperror.ErrInsufficientBalance)
		assert.Equal(t, int64(100), acc.Balance)
		assert.Zero(t, acc.Debited)
	})
}

func TestAccount_Credit(t *testing.T) {
	acc := &Account{}

	require.NoError(t, acc.Credit(25))
	assert.Equal(t, int64(25), acc.Balance)
	assert.ErrorIs(t, acc.Credit(0), apperror.ErrInvalidAmount)
}

func TestPayout(t *testing.T) {
	assert.Equal(t, int64(110), Payout(100, 1.1))
	assert.Equal(t, int64(114), Payout(100, 25.0/22.0))
	assert.Equal(t, int64(5), Payout(10, 0.5))
	assert.Equal(t, int64(1), Payout(1, 0.2))
	assert.Zero(t, Payout(100, 0))
}

func TestPayoutHundredths(t *testing.T) {
	assert.Equal(t, int64(110), PayoutHundredths(100, 110))
	assert.Equal(t, int64(2), PayoutHundredths(1, 101))
	assert.Equal(t, int64(12340), PayoutHundredths(1000, 1234))
	assert.Zero(t, PayoutHundredths(100, 0))
}

func TestSettleSkipsZero(t *testing.T) {
	acc := &Account{}

	require.NoError(t, Settle(acc, 0))
	require.NoError(t, Settle(acc, 7))
	assert.Equal(t, int64(7), acc.Credited)
}
