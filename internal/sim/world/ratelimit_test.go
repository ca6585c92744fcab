package world

import (
	"testing"
	"time"
)

func TestLimiter_BurstThenReject(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiterClock(5, time.Second, func() time.Time { return now })

	for i := 0; i < 5; i++ {
		if !l.TryConsume("c1") {
			t.Fatalf("call %d should be admitted", i)
		}
	}
	if l.TryConsume("c1") {
		t.Fatalf("call past capacity should be rejected")
	}
}

func TestLimiter_ContinuousRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiterClock(5, time.Second, func() time.Time { return now })

	for i := 0; i < 5; i++ {
		l.TryConsume("c1")
	}
	// One token refills every window/capacity.
	now = now.Add(200 * time.Millisecond)
	if !l.TryConsume("c1") {
		t.Fatalf("one token should have refilled")
	}
	if l.TryConsume("c1") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestLimiter_RefillCapsAtCapacity(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiterClock(3, time.Second, func() time.Time { return now })

	l.TryConsume("c1")
	now = now.Add(time.Hour)
	admitted := 0
	for i := 0; i < 10; i++ {
		if l.TryConsume("c1") {
			admitted++
		}
	}
	if admitted != 3 {
		t.Fatalf("admitted %d, want capacity 3", admitted)
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiterClock(1, time.Second, func() time.Time { return now })

	if !l.TryConsume("c1") {
		t.Fatalf("c1 first call should be admitted")
	}
	if !l.TryConsume("c2") {
		t.Fatalf("c2 must not share c1's bucket")
	}
	if l.TryConsume("c1") || l.TryConsume("c2") {
		t.Fatalf("both buckets should now be empty")
	}
}

func TestLimiter_RemoveEvictsBucket(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiterClock(1, time.Second, func() time.Time { return now })

	l.TryConsume("c1")
	if l.Len() != 1 {
		t.Fatalf("bucket count: got %d want 1", l.Len())
	}
	l.Remove("c1")
	if l.Len() != 0 {
		t.Fatalf("bucket should be gone after Remove")
	}
	// A fresh bucket starts full again.
	if !l.TryConsume("c1") {
		t.Fatalf("reconnected client should get a fresh bucket")
	}
}
