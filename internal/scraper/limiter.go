package scraper

import "context"

// Limiter bounds in-flight network operations across all adapters with a
// channel semaphore. A single limiter is shared by every adapter in a run.
type Limiter struct {
	sem chan struct{}
}

// NewLimiter creates a limiter allowing up to n concurrent operations.
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{sem: make(chan struct{}, n)}
}

// Acquire blocks until a slot is available or the context is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot acquired with Acquire.
func (l *Limiter) Release() {
	<-l.sem
}
