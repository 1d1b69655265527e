package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

func TestLimiterBurstThenBlocks(t *testing.T) {
	l := New(60, 2)

	if !l.Allow() || !l.Allow() {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow() {
		t.Error("expected third immediate call to be throttled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); apperror.GetCode(err) != apperror.CodeRateLimitExceeded {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeRateLimitExceeded)
	}
}

func TestUnlimited(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow() {
			t.Fatalf("call %d throttled on unlimited limiter", i)
		}
	}
}
