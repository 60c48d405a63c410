package assistant

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultMinLatency = 1000 * time.Millisecond
	DefaultMaxLatency = 2000 * time.Millisecond
)

// LatencySimulator draws delays that stand in for a backend round trip.
type LatencySimulator struct {
	min, max time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLatencySimulator returns a simulator drawing uniformly from [min, max].
// A zero interval disables the delay.
func NewLatencySimulator(min, max time.Duration) (*LatencySimulator, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("invalid latency interval [%s, %s]", min, max)
	}
	seed := uint64(time.Now().UnixNano())
	return &LatencySimulator{
		min: min,
		max: max,
		rnd: rand.New(rand.NewPCG(seed, seed>>1|1)),
	}, nil
}

// NewSeededLatencySimulator is NewLatencySimulator with a fixed seed.
func NewSeededLatencySimulator(min, max time.Duration, seed uint64) (*LatencySimulator, error) {
	s, err := NewLatencySimulator(min, max)
	if err != nil {
		return nil, err
	}
	s.rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	return s, nil
}

// Bounds returns the configured interval.
func (s *LatencySimulator) Bounds() (time.Duration, time.Duration) {
	return s.min, s.max
}

// Delay draws the next delay.
func (s *LatencySimulator) Delay() time.Duration {
	span := s.max - s.min
	if span <= 0 {
		return s.min
	}
	s.mu.Lock()
	n := s.rnd.Int64N(int64(span) + 1)
	s.mu.Unlock()
	return s.min + time.Duration(n)
}

// Wait blocks for d or until ctx is done, whichever comes first.
func (s *LatencySimulator) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
