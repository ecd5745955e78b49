package services

import (
	"context"
	"time"

	"casino-minigames/internal/crash"
)

// CrashRunner drives a crash round on a ticker until it resolves.
type CrashRunner struct {
	round    *crash.Round
	interval time.Duration
	done     chan struct{}
}

func NewCrashRunner(round *crash.Round, interval time.Duration) *CrashRunner {
	return &CrashRunner{
		round:    round,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Run ticks the round and hands every snapshot to onTick. When ctx ends first
// the round is cashed out at its next tick, so the stake is always settled.
func (r *CrashRunner) Run(ctx context.Context, onTick func(crash.Snapshot)) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			_ = r.round.RequestCashOut()
		}

		snap, err := r.round.Tick()
		if err != nil {
			return
		}
		onTick(snap)
		if snap.Status != crash.StatusRunning {
			return
		}
	}
}

func (r *CrashRunner) Round() *crash.Round { return r.round }

func (r *CrashRunner) Done() <-chan struct{} { return r.done }

// Wait blocks until the round has resolved.
func (r *CrashRunner) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
