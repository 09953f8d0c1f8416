package worker

import (
	"testing"
	"time"

	"github.com/fotofolio/backend/pkg/queue"
)

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 5 * time.Second},
		{1, 10 * time.Second},
		{2, 15 * time.Second},
	}
	for _, tt := range tests {
		if got := retryDelay(tt.attempt); got != tt.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
	// Every pre-DLQ attempt waits a nonzero interval.
	for attempt := 0; attempt < queue.MaxRetries; attempt++ {
		if retryDelay(attempt) <= 0 {
			t.Errorf("retryDelay(%d) = %v, want > 0", attempt, retryDelay(attempt))
		}
	}
}
