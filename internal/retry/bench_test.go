package retry

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// BenchmarkBackoff_ImmediateSuccess measures the overhead when the
// server is already up and the first dial succeeds.
func BenchmarkBackoff_ImmediateSuccess(b *testing.B) {
	bo := DefaultBackoff(3)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bo.Do(ctx, func(_ int) error { return nil }) //nolint:errcheck
	}
}

// BenchmarkBackoff_NotRetryable measures the early exit taken for an
// auth or handshake failure.
func BenchmarkBackoff_NotRetryable(b *testing.B) {
	bo := DefaultBackoff(3)
	bo.Retryable = func(error) bool { return false }
	ctx := context.Background()
	fatal := fmt.Errorf("handshake failed")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bo.Do(ctx, func(_ int) error { return fatal }) //nolint:errcheck
	}
}

// BenchmarkJitter measures the jitter helper on its own.
func BenchmarkJitter(b *testing.B) {
	d := 500 * time.Millisecond
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = addJitter(d)
	}
}
