package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/models"
	"casino-minigames/internal/rng"
)

var ErrSeedMismatch = errors.New("server seed does not match its hash")

// MaxRetiredSeeds bounds how many retired seeds are kept for verification.
const MaxRetiredSeeds = 64

// SeedManager holds the committed server seed. Only its hash is shown while
// rounds can still draw from it. Retired seeds are kept and revealed once no
// live round was committed under them.
type SeedManager struct {
	mu          sync.Mutex
	serverSeed  string
	rounds      int
	rotateEvery int
	retired     []models.RevealedSeed
}

func NewSeedManager(rotateEvery int) (*SeedManager, error) {
	seed, err := generateServerSeed()
	if err != nil {
		return nil, err
	}
	return &SeedManager{serverSeed: seed, rotateEvery: rotateEvery}, nil
}

func generateServerSeed() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate server seed: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func HashSeed(seed string) string {
	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:])
}

func (m *SeedManager) ServerHash() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return HashSeed(m.serverSeed)
}

// Source returns the stream for one round and the hash it was committed
// under. The seed rotates automatically every rotateEvery rounds; the retired
// seed stays sealed until Revealed finds none of its rounds live.
func (m *SeedManager) Source(clientSeed string, nonce int64) (*rng.HMACSource, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rotateEvery > 0 && m.rounds >= m.rotateEvery {
		if seed, err := generateServerSeed(); err == nil {
			m.retire(seed)
		}
	}
	m.rounds++

	return rng.NewHMACSource(m.serverSeed, clientSeed, nonce), HashSeed(m.serverSeed)
}

// Rotate replaces the server seed and returns the retired one. live holds the
// hashes of unresolved rounds; rotation is refused while the current seed is
// among them, since revealing it would expose those rounds.
func (m *SeedManager) Rotate(live map[string]bool) (previous string, err error) {
	seed, err := generateServerSeed()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if live[HashSeed(m.serverSeed)] {
		return "", fmt.Errorf("%w: rounds are still drawing from the server seed", apperror.ErrRoundInProgress)
	}
	previous = m.serverSeed
	m.retire(seed)
	return previous, nil
}

// Revealed lists retired seeds, newest first, skipping any that a live round
// was committed under.
func (m *SeedManager) Revealed(live map[string]bool) []models.RevealedSeed {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.RevealedSeed, 0, len(m.retired))
	for i := len(m.retired) - 1; i >= 0; i-- {
		if !live[m.retired[i].ServerHash] {
			out = append(out, m.retired[i])
		}
	}
	return out
}

// retire must be called with mu held.
func (m *SeedManager) retire(next string) {
	m.retired = append(m.retired, models.RevealedSeed{
		ServerSeed: m.serverSeed,
		ServerHash: HashSeed(m.serverSeed),
		RetiredAt:  time.Now().Unix(),
	})
	if len(m.retired) > MaxRetiredSeeds {
		m.retired = m.retired[len(m.retired)-MaxRetiredSeeds:]
	}
	m.serverSeed, m.rounds = next, 0
}

// Replay rebuilds the stream of a past round from its revealed server seed.
// It fails if the seed does not match the hash the round was committed under.
func Replay(serverSeed, serverHash, clientSeed string, nonce int64) (*rng.HMACSource, error) {
	if HashSeed(serverSeed) != serverHash {
		return nil, fmt.Errorf("%w: %s", ErrSeedMismatch, serverHash)
	}
	return rng.NewHMACSource(serverSeed, clientSeed, nonce), nil
}
