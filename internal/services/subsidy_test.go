package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"casino-minigames/internal/config"
	"casino-minigames/internal/services"
	"casino-minigames/internal/session"
)

type inbox struct {
	mu   sync.Mutex
	msgs []string
}

func (i *inbox) Notify(text string) {
	i.mu.Lock()
	i.msgs = append(i.msgs, text)
	i.mu.Unlock()
}

func (i *inbox) all() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.msgs...)
}

func newSubsidy() *services.Subsidy {
	cfg := config.Subsidy{Threshold: 1, Amount: 1000, Delay: 20 * time.Millisecond}
	return services.NewSubsidy(cfg, services.NewMetrics(), zap.NewNop())
}

func TestSubsidy_TopsUpBrokeSave(t *testing.T) {
	// Given: a watched save with 10 units
	box := &inbox{}
	s := session.New("Save_File_1", session.Record{Balance: 10}, session.WithNotifier(box))
	newSubsidy().Watch(s)

	// When: the player loses it all
	require.NoError(t, s.Debit(10))

	// Then: after the delay the balance is topped up to 1000
	require.Eventually(t, func() bool { return s.Balance() == 1000 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"You ran out of money! Here's $1,000 to continue."}, box.all())
}

func TestSubsidy_ThresholdIsInclusive(t *testing.T) {
	s := session.New("Save_File_1", session.Record{Balance: 5})
	newSubsidy().Watch(s)

	require.NoError(t, s.Debit(4))

	require.Eventually(t, func() bool { return s.Balance() == 1000 }, time.Second, 5*time.Millisecond)
}

func TestSubsidy_CancelledWhenBalanceRecovers(t *testing.T) {
	// Given: a save that just went broke
	s := session.New("Save_File_1", session.Record{Balance: 10})
	newSubsidy().Watch(s)
	require.NoError(t, s.Debit(10))

	// When: a payout lands before the delay
	require.NoError(t, s.Credit(50))

	// Then: no subsidy is granted
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(50), s.Balance())
}

func TestSubsidy_BrokeOnLoad(t *testing.T) {
	s := session.New("Save_File_1", session.Record{Balance: 0})
	newSubsidy().Watch(s)

	require.Eventually(t, func() bool { return s.Balance() == 1000 }, time.Second, 5*time.Millisecond)
}

func TestSubsidy_Stop(t *testing.T) {
	s := session.New("Save_File_1", session.Record{Balance: 0})
	sub := newSubsidy()
	sub.Watch(s)

	sub.Stop("Save_File_1")

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, s.Balance())
}
