package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/services"
	"casino-minigames/internal/session"
)

func newRedis(t *testing.T) (*services.RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := services.NewRedisServiceWithClient(client)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestRedisService_SaveLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedis(t)

	// Given: a new save
	id, err := svc.CreateSave(ctx, "ada", 1000)
	require.NoError(t, err)
	assert.Equal(t, "Save_File_1", id)
	assert.True(t, mr.Exists("Save_File_1"))

	// When: its balance is stored
	require.NoError(t, svc.StoreSave(ctx, id, session.Record{Username: "ada", Balance: 420}))

	// Then: loading returns the stored record
	rec, err := svc.LoadSave(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.Record{Username: "ada", Balance: 420}, rec)

	require.NoError(t, svc.DeleteSave(ctx, id))
	_, err = svc.LoadSave(ctx, id)
	assert.ErrorIs(t, err, apperror.ErrSaveNotFound)
	assert.ErrorIs(t, svc.DeleteSave(ctx, id), apperror.ErrSaveNotFound)
}

func TestRedisService_StoreNeverCreates(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedis(t)

	err := svc.StoreSave(ctx, "Save_File_9", session.Record{Username: "x", Balance: 1})

	assert.ErrorIs(t, err, apperror.ErrSaveNotFound)
	assert.False(t, mr.Exists("Save_File_9"))
}

func TestRedisService_ListSavesInSlotOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRedis(t)

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		_, err := svc.CreateSave(ctx, name, 1000)
		require.NoError(t, err)
	}

	saves, err := svc.ListSaves(ctx)

	require.NoError(t, err)
	require.Len(t, saves, 11)
	assert.Equal(t, "Save_File_1", saves[0].ID)
	assert.Equal(t, "Save_File_10", saves[9].ID)
	assert.Equal(t, "k", saves[10].Username)
}

func TestRedisService_SeedState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRedis(t)
	id, err := svc.CreateSave(ctx, "ada", 1000)
	require.NoError(t, err)

	st, err := svc.GetSeedState(ctx, id)
	require.NoError(t, err)
	assert.Len(t, st.ClientSeed, 32)
	assert.Zero(t, st.Nonce)

	n, err := svc.NextNonce(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = svc.NextNonce(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, svc.SetClientSeed(ctx, id, "lucky"))
	st, err = svc.GetSeedState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, services.SeedState{ClientSeed: "lucky", Nonce: 0}, st)
}

func TestRedisService_CheckRateLimit(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedis(t)

	for i := 0; i < 3; i++ {
		ok, err := svc.CheckRateLimit(ctx, "Save_File_1", "bet", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := svc.CheckRateLimit(ctx, "Save_File_1", "bet", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)
	ok, err = svc.CheckRateLimit(ctx, "Save_File_1", "bet", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisService_RecordBetPatternTrims(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedis(t)

	for i := 0; i < services.MaxBetPatterns+10; i++ {
		require.NoError(t, svc.RecordBetPattern(ctx, "Save_File_1", "dice", int64(i+1)))
	}

	items, err := mr.List("patterns:Save_File_1:bets")
	require.NoError(t, err)
	assert.Len(t, items, services.MaxBetPatterns)

	bets, err := svc.RecentBets(ctx, "Save_File_1", 3)
	require.NoError(t, err)
	require.Len(t, bets, 3)
	assert.Equal(t, int64(services.MaxBetPatterns+10), bets[0].Amount)
	assert.Equal(t, "dice", bets[0].Game)

	bets, err = svc.RecentBets(ctx, "Save_File_2", 0)
	require.NoError(t, err)
	assert.Empty(t, bets)
}

func TestValidSaveID(t *testing.T) {
	assert.True(t, services.ValidSaveID("Save_File_3"))
	assert.False(t, services.ValidSaveID("Save_File_0"))
	assert.False(t, services.ValidSaveID("wallet:3"))
	assert.False(t, services.ValidSaveID("Save_File_x"))
}
