package services

import "casino-minigames/internal/crash"

// Broadcaster pushes live updates to whoever is watching a save.
type Broadcaster interface {
	Notify(saveID, text string)
	BroadcastBalance(saveID string, balance int64)
	BroadcastCrash(saveID, roundID string, snap crash.Snapshot)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Notify(string, string)                         {}
func (nopBroadcaster) BroadcastBalance(string, int64)                {}
func (nopBroadcaster) BroadcastCrash(string, string, crash.Snapshot) {}
