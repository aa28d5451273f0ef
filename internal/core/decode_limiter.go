package core

// decode_limiter.go bounds how many workbook decodes run at once.
//
// Decoding an uploaded file is the only expensive, allocation-heavy step in
// the editor. The limiter uses a semaphore so a burst of uploads cannot
// exhaust memory; when all slots are busy a caller waits up to maxWait
// before failing with ErrTooManyDecodes. WaitForDrain supports graceful
// shutdown by blocking until in-flight decodes finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyDecodes is returned when all decode slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyDecodes = errors.New("too many workbooks loading, please try again later")

// DefaultMaxConcurrentDecodes is the default limit for parallel decodes.
const DefaultMaxConcurrentDecodes = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// DecodeLimiter controls concurrent workbook decoding with a semaphore.
type DecodeLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewDecodeLimiter creates a limiter allowing at most maxConcurrent decodes.
// Requests that cannot acquire a slot within maxWait get ErrTooManyDecodes.
func NewDecodeLimiter(maxConcurrent int, maxWait time.Duration) *DecodeLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentDecodes
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &DecodeLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a decode slot.
// The caller MUST call Release() when the decode completes (use defer).
func (l *DecodeLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyDecodes
	}
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *DecodeLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *DecodeLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// ActiveCount returns the number of decodes in flight.
func (l *DecodeLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no decode is in flight or ctx is done.
func (l *DecodeLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DecodeLimiterStatus is a snapshot of the limiter for monitoring.
type DecodeLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *DecodeLimiter) Status() DecodeLimiterStatus {
	return DecodeLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
