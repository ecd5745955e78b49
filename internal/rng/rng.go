package rng

import (
	"crypto/hmac"
	cryptoRand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source is the random stream every engine draws from.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}

	// 53 bits of mantissa
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

func (cryptoSource) IntN(n int) int {
	return rand.New(cryptoReader{}).IntN(n)
}

type cryptoReader struct{}

func (cryptoReader) Uint64() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Uint64()
	}
	return binary.BigEndian.Uint64(buf[:])
}

// Default returns the crypto-backed source used in production.
func Default() Source { return cryptoSource{} }

type seededSource struct{ r *rand.Rand }

// NewSeeded returns a reproducible source, for tests and simulations.
func NewSeeded(seed uint64) Source {
	return &seededSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededSource) Float64() float64 { return s.r.Float64() }
func (s *seededSource) IntN(n int) int   { return s.r.IntN(n) }

// HMACSource derives a deterministic stream from a committed server seed, the
// player's client seed and a nonce. Anyone holding the revealed server seed
// can replay it.
type HMACSource struct {
	serverSeed string
	clientSeed string
	nonce      int64
	cursor     uint64
	buf        []byte
}

func NewHMACSource(serverSeed, clientSeed string, nonce int64) *HMACSource {
	return &HMACSource{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
	}
}

func (h *HMACSource) next8() uint64 {
	if len(h.buf) < 8 {
		mac := hmac.New(sha256.New, []byte(h.serverSeed))
		fmt.Fprintf(mac, "%s:%d:%d", h.clientSeed, h.nonce, h.cursor)
		h.cursor++
		h.buf = mac.Sum(nil)
	}

	v := binary.BigEndian.Uint64(h.buf[:8])
	h.buf = h.buf[8:]
	return v
}

func (h *HMACSource) Float64() float64 {
	return float64(h.next8()>>11) / (1 << 53)
}

func (h *HMACSource) Uint64() uint64 { return h.next8() }

func (h *HMACSource) IntN(n int) int {
	return rand.New(h).IntN(n)
}
