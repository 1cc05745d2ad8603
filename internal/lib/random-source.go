package lib

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/big"
	"math/rand/v2"
	"sync"
)

// CryptoRandom draws from the operating system CSPRNG.
type CryptoRandom struct{}

func (CryptoRandom) Uint64N(n uint64) uint64 {
	v, err := crand.Int(crand.Reader, new(big.Int).SetUint64(n))
	if err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return v.Uint64()
}

func (CryptoRandom) Read(p []byte) (int, error) {
	return crand.Read(p)
}

// SeededRandom is a reproducible source for previews and load tests. It is
// safe for concurrent use.
type SeededRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSeededRandom(seed1, seed2 uint64) *SeededRandom {
	return &SeededRandom{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *SeededRandom) Uint64N(n uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rnd.Uint64N(n)
}

func (s *SeededRandom) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], s.rnd.Uint64())
		copy(p[i:], buf[:])
	}

	return len(p), nil
}
