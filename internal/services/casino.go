package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/config"
	"casino-minigames/internal/crash"
	"casino-minigames/internal/ledger"
	"casino-minigames/internal/models"
	"casino-minigames/internal/rng"
	"casino-minigames/internal/session"
)

// Casino hosts the games. It keeps one table per loaded save holding that
// save's session and its active rounds, at most one per game.
type Casino struct {
	cfg         *config.Config
	store       *RedisService
	journal     *Journal
	seeds       *SeedManager
	subsidy     *Subsidy
	metrics     *Metrics
	broadcaster Broadcaster
	paytables   config.Paytables
	log         *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	tables map[string]*table
}

type Deps struct {
	Store       *RedisService
	Journal     *Journal
	Seeds       *SeedManager
	Subsidy     *Subsidy
	Metrics     *Metrics
	Broadcaster Broadcaster
	Paytables   config.Paytables
	Log         *zap.Logger
}

func NewCasino(cfg *config.Config, deps Deps) *Casino {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Casino{
		cfg:         cfg,
		store:       deps.Store,
		journal:     deps.Journal,
		seeds:       deps.Seeds,
		subsidy:     deps.Subsidy,
		metrics:     deps.Metrics,
		broadcaster: deps.Broadcaster,
		paytables:   deps.Paytables,
		log:         deps.Log.With(zap.String("component", "casino")),
		ctx:         ctx,
		cancel:      cancel,
		tables:      make(map[string]*table),
	}
	if c.broadcaster == nil {
		c.broadcaster = nopBroadcaster{}
	}
	if c.metrics == nil {
		c.metrics = NewMetrics()
	}
	if c.paytables.Plinko == nil {
		c.paytables = config.DefaultPaytables()
	}
	return c
}

// View is what every game action returns: the round's identity, the game's
// own snapshot and the balance after the action.
type View struct {
	Round   models.RoundInfo `json:"round"`
	State   any              `json:"state"`
	Balance int64            `json:"balance"`
}

func (c *Casino) CreateSave(ctx context.Context, username string) (SaveSummary, error) {
	id, err := c.store.CreateSave(ctx, username, c.cfg.InitialBalance)
	if err != nil {
		return SaveSummary{}, err
	}
	c.log.Info("save created", zap.String("save_id", id), zap.String("username", username))
	return SaveSummary{ID: id, Username: username, Balance: c.cfg.InitialBalance}, nil
}

func (c *Casino) ListSaves(ctx context.Context) ([]SaveSummary, error) {
	return c.store.ListSaves(ctx)
}

// LoadSave reads a save into memory once. Later loads reuse the live table.
func (c *Casino) LoadSave(ctx context.Context, saveID string) (models.Profile, error) {
	t, err := c.table(ctx, saveID)
	if err != nil {
		return models.Profile{}, err
	}
	return c.profile(t), nil
}

func (c *Casino) Profile(ctx context.Context, saveID string) (models.Profile, error) {
	return c.LoadSave(ctx, saveID)
}

// Save persists the loaded balance to the store.
func (c *Casino) Save(ctx context.Context, saveID string) (models.Profile, error) {
	t, err := c.table(ctx, saveID)
	if err != nil {
		return models.Profile{}, err
	}

	rec, _ := t.session.Snapshot()
	if err := c.store.StoreSave(ctx, saveID, rec); err != nil {
		return models.Profile{}, err
	}
	t.session.MarkSaved()
	c.log.Debug("save stored", zap.String("save_id", saveID), zap.Int64("balance", rec.Balance))
	return c.profile(t), nil
}

func (c *Casino) DeleteSave(ctx context.Context, saveID string) error {
	if err := c.store.DeleteSave(ctx, saveID); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.tables, saveID)
	c.mu.Unlock()
	if c.subsidy != nil {
		c.subsidy.Stop(saveID)
	}

	if err := c.journal.DeleteSave(ctx, saveID); err != nil {
		c.log.Warn("failed to purge journal", zap.String("save_id", saveID), zap.Error(err))
	}
	c.log.Info("save deleted", zap.String("save_id", saveID))
	return nil
}

func (c *Casino) History(ctx context.Context, saveID string, limit int) ([]models.Transaction, error) {
	if _, err := c.table(ctx, saveID); err != nil {
		return nil, err
	}
	return c.journal.History(ctx, saveID, limit)
}

// RecentBets lists the save's latest stakes across all games.
func (c *Casino) RecentBets(ctx context.Context, saveID string, limit int) ([]models.BetPattern, error) {
	if _, err := c.table(ctx, saveID); err != nil {
		return nil, err
	}
	return c.store.RecentBets(ctx, saveID, limit)
}

func (c *Casino) Fairness(ctx context.Context, saveID string) (models.VerificationData, error) {
	st, err := c.store.GetSeedState(ctx, saveID)
	if err != nil {
		return models.VerificationData{}, err
	}
	return models.VerificationData{
		ClientSeed:   st.ClientSeed,
		ServerHash:   c.seeds.ServerHash(),
		CurrentNonce: st.Nonce,
	}, nil
}

func (c *Casino) SetClientSeed(ctx context.Context, saveID, seed string) (models.VerificationData, error) {
	if _, err := c.table(ctx, saveID); err != nil {
		return models.VerificationData{}, err
	}
	if err := c.store.SetClientSeed(ctx, saveID, seed); err != nil {
		return models.VerificationData{}, err
	}
	return c.Fairness(ctx, saveID)
}

// RotateSeed retires the server seed, revealing it for verification. It is
// refused while any save has a round committed under the current seed.
func (c *Casino) RotateSeed(ctx context.Context, saveID string) (models.RotatedSeed, error) {
	if _, err := c.table(ctx, saveID); err != nil {
		return models.RotatedSeed{}, err
	}

	var previous string
	err := c.withLiveRounds(func(live map[string]bool) error {
		var err error
		previous, err = c.seeds.Rotate(live)
		return err
	})
	if err != nil {
		return models.RotatedSeed{}, err
	}
	c.log.Info("server seed rotated", zap.String("by", saveID))

	current, err := c.Fairness(ctx, saveID)
	if err != nil {
		return models.RotatedSeed{}, err
	}
	return models.RotatedSeed{
		PreviousSeed: previous,
		PreviousHash: HashSeed(previous),
		Current:      current,
	}, nil
}

// RevealedSeeds lists retired server seeds none of whose rounds are live.
func (c *Casino) RevealedSeeds(ctx context.Context, saveID string) ([]models.RevealedSeed, error) {
	if _, err := c.table(ctx, saveID); err != nil {
		return nil, err
	}

	var seeds []models.RevealedSeed
	_ = c.withLiveRounds(func(live map[string]bool) error {
		seeds = c.seeds.Revealed(live)
		return nil
	})
	return seeds, nil
}

// withLiveRounds runs fn with the seed hashes of every unresolved round while
// every table is locked, so no round can start until fn returns.
func (c *Casino) withLiveRounds(fn func(live map[string]bool) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := make(map[string]bool)
	for _, t := range c.tables {
		t.mu.Lock()
		defer t.mu.Unlock()
		for _, info := range t.unresolved() {
			live[info.ServerSeedHash] = true
		}
	}
	return fn(live)
}

// RoundNet is what one of the save's rounds paid out minus its stake.
func (c *Casino) RoundNet(ctx context.Context, saveID, roundID string) (models.RoundNetResponse, error) {
	if _, err := c.table(ctx, saveID); err != nil {
		return models.RoundNetResponse{}, err
	}

	net, found, err := c.journal.RoundNet(ctx, saveID, roundID)
	if err != nil {
		return models.RoundNetResponse{}, err
	}
	if !found {
		return models.RoundNetResponse{}, fmt.Errorf("%w: %s", apperror.ErrRoundNotFound, roundID)
	}
	return models.RoundNetResponse{RoundID: roundID, Net: net}, nil
}

// VerifyCrash replays a crash round from its revealed server seed and returns
// the point it would have crashed at without a cash-out.
func (c *Casino) VerifyCrash(req models.VerifyCrashRequest) (models.VerifyCrashResponse, error) {
	src, err := Replay(req.ServerSeed, req.ServerHash, req.ClientSeed, req.Nonce)
	if err != nil {
		return models.VerifyCrashResponse{}, err
	}

	round, err := crash.Start(&ledger.Account{Balance: 1}, 1, crash.Options{Bands: c.paytables.Crash}, src)
	if err != nil {
		return models.VerifyCrashResponse{}, err
	}
	snap := round.Snapshot()
	for snap.Status == crash.StatusRunning {
		if snap, err = round.Tick(); err != nil {
			return models.VerifyCrashResponse{}, err
		}
	}
	return models.VerifyCrashResponse{CrashPoint: snap.CrashPoint, Ticks: snap.Ticks}, nil
}

// Shutdown settles running crash rounds and stores every unsaved balance.
func (c *Casino) Shutdown(ctx context.Context) error {
	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	tables := make([]*table, 0, len(c.tables))
	for _, t := range c.tables {
		tables = append(tables, t)
	}
	c.mu.Unlock()

	var errs []error
	for _, t := range tables {
		rec, dirty := t.session.Snapshot()
		if !dirty {
			continue
		}
		if err := c.store.StoreSave(ctx, t.session.SaveID(), rec); err != nil {
			errs = append(errs, err)
			continue
		}
		t.session.MarkSaved()
	}
	return errors.Join(errs...)
}

func (c *Casino) table(ctx context.Context, saveID string) (*table, error) {
	if !ValidSaveID(saveID) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSaveNotFound, saveID)
	}

	c.mu.Lock()
	t, ok := c.tables[saveID]
	c.mu.Unlock()
	if ok {
		return t, nil
	}

	rec, err := c.store.LoadSave(ctx, saveID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tables[saveID]; ok {
		return t, nil
	}

	t, err = c.newTable(saveID, rec)
	if err != nil {
		return nil, err
	}
	c.tables[saveID] = t
	c.log.Info("save loaded", zap.String("save_id", saveID), zap.Int64("balance", rec.Balance))
	return t, nil
}

func (c *Casino) newTable(saveID string, rec session.Record) (*table, error) {
	sess := session.New(saveID, rec,
		session.WithRecorder(c.journal),
		session.WithNotifier(session.NotifierFunc(func(text string) {
			c.broadcaster.Notify(saveID, text)
		})),
	)
	sess.OnBalance(func(balance int64) { c.broadcaster.BroadcastBalance(saveID, balance) })

	t, err := newTable(sess, c.cfg.Games)
	if err != nil {
		return nil, err
	}
	if c.subsidy != nil {
		c.subsidy.Watch(sess)
	}
	return t, nil
}

func (c *Casino) profile(t *table) models.Profile {
	rec, dirty := t.session.Snapshot()
	return models.Profile{
		SaveID:       t.session.SaveID(),
		Username:     rec.Username,
		Balance:      rec.Balance,
		Dirty:        dirty,
		ActiveRounds: t.activeRounds(),
	}
}

// play is one round's wiring: its identity, the ledger that tags its
// movements and the committed random stream.
type play struct {
	info   models.RoundInfo
	ledger ledger.Ledger
	src    rng.Source
}

func (c *Casino) begin(ctx context.Context, t *table, game models.GameType) (play, error) {
	saveID := t.session.SaveID()

	allowed, err := c.store.CheckRateLimit(ctx, saveID, "bet", c.cfg.BetsPerMinute, time.Minute)
	if err != nil {
		return play{}, err
	}
	if !allowed {
		return play{}, apperror.ErrRateLimited
	}

	st, err := c.store.GetSeedState(ctx, saveID)
	if err != nil {
		return play{}, err
	}
	nonce, err := c.store.NextNonce(ctx, saveID)
	if err != nil {
		return play{}, err
	}

	src, hash := c.seeds.Source(st.ClientSeed, nonce)
	info := models.RoundInfo{
		ID:             models.GenerateRoundID(game),
		Game:           game,
		ServerSeedHash: hash,
		ClientSeed:     st.ClientSeed,
		Nonce:          nonce,
		StartedAt:      time.Now().Unix(),
	}
	return play{info: info, ledger: t.session.ForRound(string(game), info.ID), src: src}, nil
}

// placed runs once the stake of a round has been debited.
func (c *Casino) placed(ctx context.Context, t *table, p play, stake int64) {
	c.metrics.Bet(string(p.info.Game), stake)
	if err := c.store.RecordBetPattern(ctx, t.session.SaveID(), string(p.info.Game), stake); err != nil {
		c.log.Warn("failed to record bet pattern", zap.String("save_id", t.session.SaveID()), zap.Error(err))
	}
}

func (c *Casino) resolved(info models.RoundInfo, outcome string, payout int64) {
	c.metrics.Resolved(string(info.Game), outcome, payout)
	c.log.Debug("round resolved",
		zap.String("round_id", info.ID),
		zap.String("game", string(info.Game)),
		zap.String("outcome", outcome),
		zap.Int64("payout", payout))
}

func (c *Casino) abandoned(info models.RoundInfo) {
	c.metrics.Resolved(string(info.Game), "abandoned", 0)
	c.log.Info("round abandoned", zap.String("round_id", info.ID), zap.String("game", string(info.Game)))
}

func (c *Casino) view(t *table, info models.RoundInfo, state any) View {
	return View{Round: info, State: state, Balance: t.session.Balance()}
}

func outcomeOf(stake, payout int64) string {
	switch {
	case payout > stake:
		return "win"
	case payout == stake:
		return "push"
	default:
		return "loss"
	}
}

func hundredths(m float64) int64 {
	return int64(math.Round(m * 100))
}
