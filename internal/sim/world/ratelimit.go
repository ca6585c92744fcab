package world

import "time"

// Limiter is a token-bucket throttle keyed by client id. Tokens refill
// continuously at capacity/window and cap at capacity; one admitted event
// costs one token. Rejected events are dropped by the caller, never queued.
//
// The limiter is mutated only from the world loop, so it needs no locking.
type Limiter struct {
	capacity float64
	window   time.Duration
	now      func() time.Time

	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewLimiter(capacity int, window time.Duration) *Limiter {
	return NewLimiterClock(capacity, window, time.Now)
}

// NewLimiterClock injects the clock so refill arithmetic is testable without
// wall-clock sleeps.
func NewLimiterClock(capacity int, window time.Duration, now func() time.Time) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{
		capacity: float64(capacity),
		window:   window,
		now:      now,
		buckets:  make(map[string]*bucket),
	}
}

func (l *Limiter) TryConsume(id string) bool {
	now := l.now()
	b, ok := l.buckets[id]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[id] = b
	}
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * (l.capacity / l.window.Seconds())
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Remove drops the bucket for a departed client; without this, churn grows
// the map without bound.
func (l *Limiter) Remove(id string) {
	delete(l.buckets, id)
}

func (l *Limiter) Len() int {
	return len(l.buckets)
}
