package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/config"
	"casino-minigames/internal/models"
	"casino-minigames/internal/session"
)

// RedisService is the key-value store behind save files. A save is a JSON
// {username, balance} blob under Save_File_<n>.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(ctx context.Context, cfg config.Redis) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

// NewRedisServiceWithClient wraps an existing client, for tests.
func NewRedisServiceWithClient(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

type SaveSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

func ValidSaveID(id string) bool {
	n, err := strconv.Atoi(strings.TrimPrefix(id, KeySavePrefix))
	return strings.HasPrefix(id, KeySavePrefix) && err == nil && n > 0
}

func (s *RedisService) CreateSave(ctx context.Context, username string, balance int64) (string, error) {
	n, err := s.client.Incr(ctx, KeySaveSeq).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate save: %w", err)
	}
	id := fmt.Sprintf(KeySaveFile, n)

	data, err := json.Marshal(session.Record{Username: username, Balance: balance})
	if err != nil {
		return "", fmt.Errorf("failed to marshal save: %w", err)
	}
	seed, err := models.GenerateClientSeed()
	if err != nil {
		return "", err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, id, data, 0)
	pipe.SAdd(ctx, KeySaveIndex, id)
	pipe.HSet(ctx, fmt.Sprintf(KeySaveSeed, id), "client_seed", seed, "nonce", 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create save: %w", err)
	}
	return id, nil
}

func (s *RedisService) LoadSave(ctx context.Context, id string) (session.Record, error) {
	data, err := s.client.Get(ctx, id).Result()
	if errors.Is(err, redis.Nil) {
		return session.Record{}, fmt.Errorf("%w: %s", apperror.ErrSaveNotFound, id)
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("failed to get save: %w", err)
	}

	var rec session.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return session.Record{}, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return rec, nil
}

// StoreSave overwrites an existing save. It never creates one.
func (s *RedisService) StoreSave(ctx context.Context, id string, rec session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	ok, err := s.client.SetXX(ctx, id, data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to store save: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSaveNotFound, id)
	}
	return nil
}

func (s *RedisService) DeleteSave(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, id)
	pipe.Del(ctx, fmt.Sprintf(KeySaveSeed, id), fmt.Sprintf(KeyBetPatterns, id))
	pipe.SRem(ctx, KeySaveIndex, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrSaveNotFound, id)
	}
	return nil
}

// ListSaves returns every save ordered by slot number.
func (s *RedisService) ListSaves(ctx context.Context) ([]SaveSummary, error) {
	ids, err := s.client.SMembers(ctx, KeySaveIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	if len(ids) == 0 {
		return []SaveSummary{}, nil
	}

	sort.Slice(ids, func(i, j int) bool { return slot(ids[i]) < slot(ids[j]) })

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, id)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pipeline execution failed: %w", err)
	}

	saves := make([]SaveSummary, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}

		var rec session.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		saves = append(saves, SaveSummary{ID: ids[i], Username: rec.Username, Balance: rec.Balance})
	}
	return saves, nil
}

func slot(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, KeySavePrefix))
	return n
}

// SeedState is the client half of a save's provably fair inputs.
type SeedState struct {
	ClientSeed string `json:"client_seed"`
	Nonce      int64  `json:"nonce"`
}

func (s *RedisService) GetSeedState(ctx context.Context, id string) (SeedState, error) {
	vals, err := s.client.HGetAll(ctx, fmt.Sprintf(KeySaveSeed, id)).Result()
	if err != nil {
		return SeedState{}, fmt.Errorf("failed to get seed state: %w", err)
	}

	st := SeedState{ClientSeed: vals["client_seed"]}
	st.Nonce, _ = strconv.ParseInt(vals["nonce"], 10, 64)
	if st.ClientSeed == "" {
		if st.ClientSeed, err = models.GenerateClientSeed(); err != nil {
			return SeedState{}, err
		}
		if err := s.SetClientSeed(ctx, id, st.ClientSeed); err != nil {
			return SeedState{}, err
		}
	}
	return st, nil
}

// SetClientSeed replaces the client seed and restarts the nonce.
func (s *RedisService) SetClientSeed(ctx context.Context, id, seed string) error {
	key := fmt.Sprintf(KeySaveSeed, id)
	if err := s.client.HSet(ctx, key, "client_seed", seed, "nonce", 0).Err(); err != nil {
		return fmt.Errorf("failed to set client seed: %w", err)
	}
	return nil
}

// NextNonce reserves the nonce for one round and returns it.
func (s *RedisService) NextNonce(ctx context.Context, id string) (int64, error) {
	n, err := s.client.HIncrBy(ctx, fmt.Sprintf(KeySaveSeed, id), "nonce", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance nonce: %w", err)
	}
	return n - 1, nil
}

func (s *RedisService) CheckRateLimit(ctx context.Context, id, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, id, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// RecordBetPattern keeps the last MaxBetPatterns bets of a save.
func (s *RedisService) RecordBetPattern(ctx context.Context, id, game string, amount int64) error {
	key := fmt.Sprintf(KeyBetPatterns, id)

	data, err := json.Marshal(models.BetPattern{
		Game:      game,
		Amount:    amount,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, MaxBetPatterns-1)
	pipe.Expire(ctx, key, TTLBetPatterns)
	_, err = pipe.Exec(ctx)
	return err
}

// RecentBets returns up to limit of the save's recorded bets, newest first.
func (s *RedisService) RecentBets(ctx context.Context, id string, limit int) ([]models.BetPattern, error) {
	if limit <= 0 || limit > MaxBetPatterns {
		limit = MaxBetPatterns
	}

	items, err := s.client.LRange(ctx, fmt.Sprintf(KeyBetPatterns, id), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read bet patterns: %w", err)
	}

	bets := make([]models.BetPattern, 0, len(items))
	for _, item := range items {
		var bet models.BetPattern
		if err := json.Unmarshal([]byte(item), &bet); err != nil {
			continue
		}
		bets = append(bets, bet)
	}
	return bets, nil
}
