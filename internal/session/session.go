package session

import (
	"slices"
	"sync"
	"time"

	"casino-minigames/internal/ledger"
)

// Notifier delivers a user-facing message. It must not block.
type Notifier interface {
	Notify(text string)
}

type NotifierFunc func(text string)

func (f NotifierFunc) Notify(text string) { f(text) }

type Kind string

const (
	KindDebit   Kind = "debit"
	KindCredit  Kind = "credit"
	KindSubsidy Kind = "subsidy"
)

// Entry is one balance movement.
type Entry struct {
	SaveID       string
	Game         string
	RoundID      string
	Kind         Kind
	Amount       int64
	BalanceAfter int64
	At           time.Time
}

// Recorder receives every balance movement after it is applied.
type Recorder interface {
	Record(e Entry)
}

// Record is the persisted shape of a save.
type Record struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// Session owns one save's balance. All mutation goes through Debit, Credit
// and Grant; observers run after the lock is released.
type Session struct {
	mu        sync.Mutex
	saveID    string
	username  string
	acc       ledger.Account
	dirty     bool
	notifier  Notifier
	recorder  Recorder
	observers []func(balance int64)
}

type Option func(*Session)

func WithNotifier(n Notifier) Option { return func(s *Session) { s.notifier = n } }

func WithRecorder(r Recorder) Option { return func(s *Session) { s.recorder = r } }

func New(saveID string, rec Record, opts ...Option) *Session {
	s := &Session{
		saveID:   saveID,
		username: rec.Username,
		acc:      ledger.Account{Balance: rec.Balance},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) SaveID() string { return s.saveID }

func (s *Session) Username() string { return s.username }

func (s *Session) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Balance
}

// Snapshot returns the save record and whether it changed since the last
// MarkSaved.
func (s *Session) Snapshot() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Record{Username: s.username, Balance: s.acc.Balance}, s.dirty
}

func (s *Session) MarkSaved() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// OnBalance registers fn to run after every balance change.
func (s *Session) OnBalance(fn func(balance int64)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Session) Notify(text string) {
	if s.notifier != nil {
		s.notifier.Notify(text)
	}
}

func (s *Session) Debit(amount int64) error { return s.apply("", "", KindDebit, amount) }

func (s *Session) Credit(amount int64) error { return s.apply("", "", KindCredit, amount) }

// Grant credits amount as a subsidy rather than a payout.
func (s *Session) Grant(amount int64) error { return s.apply("", "", KindSubsidy, amount) }

// ForRound returns a ledger that tags every movement with game and round.
func (s *Session) ForRound(game, roundID string) ledger.Ledger {
	return roundLedger{s: s, game: game, roundID: roundID}
}

type roundLedger struct {
	s       *Session
	game    string
	roundID string
}

func (r roundLedger) Debit(amount int64) error {
	return r.s.apply(r.game, r.roundID, KindDebit, amount)
}

func (r roundLedger) Credit(amount int64) error {
	return r.s.apply(r.game, r.roundID, KindCredit, amount)
}

func (s *Session) apply(game, roundID string, kind Kind, amount int64) error {
	s.mu.Lock()
	var err error
	if kind == KindDebit {
		err = s.acc.Debit(amount)
	} else {
		err = s.acc.Credit(amount)
	}
	if err != nil {
		s.mu.Unlock()
		if kind == KindDebit {
			s.Notify(err.Error())
		}
		return err
	}

	s.dirty = true
	balance := s.acc.Balance
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.Record(Entry{
			SaveID:       s.saveID,
			Game:         game,
			RoundID:      roundID,
			Kind:         kind,
			Amount:       amount,
			BalanceAfter: balance,
			At:           time.Now().UTC(),
		})
	}
	for _, fn := range observers {
		fn(balance)
	}
	return nil
}
