package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"casino-minigames/internal/config"
	"casino-minigames/internal/models"
	"casino-minigames/internal/session"
)

// Subsidy tops a broke save back up once its balance has stayed at or below
// the threshold for the configured delay.
type Subsidy struct {
	cfg     config.Subsidy
	log     *zap.Logger
	metrics *Metrics

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewSubsidy(cfg config.Subsidy, metrics *Metrics, log *zap.Logger) *Subsidy {
	return &Subsidy{
		cfg:     cfg,
		log:     log.With(zap.String("component", "subsidy")),
		metrics: metrics,
		pending: make(map[string]*time.Timer),
	}
}

// Watch attaches the subsidy to a session's balance changes.
func (s *Subsidy) Watch(sess *session.Session) {
	sess.OnBalance(func(balance int64) { s.observe(sess, balance) })
	s.observe(sess, sess.Balance())
}

func (s *Subsidy) observe(sess *session.Session, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := sess.SaveID()
	timer, waiting := s.pending[id]
	if balance > s.cfg.Threshold {
		if waiting {
			timer.Stop()
			delete(s.pending, id)
		}
		return
	}
	if waiting {
		return
	}

	s.pending[id] = time.AfterFunc(s.cfg.Delay, func() { s.fire(sess) })
}

func (s *Subsidy) fire(sess *session.Session) {
	s.mu.Lock()
	delete(s.pending, sess.SaveID())
	s.mu.Unlock()

	balance := sess.Balance()
	if balance > s.cfg.Threshold || balance >= s.cfg.Amount {
		return
	}
	if err := sess.Grant(s.cfg.Amount - balance); err != nil {
		s.log.Error("failed to grant subsidy", zap.String("save_id", sess.SaveID()), zap.Error(err))
		return
	}

	if s.metrics != nil {
		s.metrics.Subsidies.Inc()
	}
	s.log.Info("subsidy granted", zap.String("save_id", sess.SaveID()), zap.Int64("balance", balance))
	sess.Notify("You ran out of money! Here's " + models.FormatUnits(s.cfg.Amount) + " to continue.")
}

// Stop cancels a pending top-up, used when a save is unloaded.
func (s *Subsidy) Stop(saveID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.pending[saveID]; ok {
		timer.Stop()
		delete(s.pending, saveID)
	}
}
