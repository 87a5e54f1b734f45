package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAnswerAllPreservesOrder(t *testing.T) {
	pool := NewPool(PoolConfig{Concurrency: 4})

	questions := make([]string, 20)
	for i := range questions {
		questions[i] = fmt.Sprintf("question %d", i)
	}

	answers := pool.AnswerAll(context.Background(), questions, func(_ context.Context, question string) string {
		return "answer to " + question
	})

	if len(answers) != len(questions) {
		t.Fatalf("got %d answers, want %d", len(answers), len(questions))
	}
	for i, answer := range answers {
		want := fmt.Sprintf("answer to question %d", i)
		if answer != want {
			t.Errorf("answers[%d] = %q, want %q", i, answer, want)
		}
	}
}

func TestAnswerAllBoundsConcurrency(t *testing.T) {
	const concurrency = 3
	pool := NewPool(PoolConfig{Concurrency: concurrency})

	var inFlight, peak int64
	var mu sync.Mutex

	questions := make([]string, 12)
	answers := pool.AnswerAll(context.Background(), questions, func(_ context.Context, _ string) string {
		current := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return "done"
	})

	if len(answers) != len(questions) {
		t.Fatalf("got %d answers, want %d", len(answers), len(questions))
	}
	if peak > concurrency {
		t.Errorf("peak in-flight = %d, want at most %d", peak, concurrency)
	}
}

func TestAnswerAllEmptyBatch(t *testing.T) {
	pool := NewPool(PoolConfig{})

	answers := pool.AnswerAll(context.Background(), nil, func(_ context.Context, _ string) string {
		t.Fatal("answer func called for empty batch")
		return ""
	})

	if len(answers) != 0 {
		t.Errorf("got %d answers, want 0", len(answers))
	}
}

func TestNewPoolDefaultsConcurrency(t *testing.T) {
	pool := NewPool(PoolConfig{Concurrency: -1})
	if pool.concurrency != 1 {
		t.Errorf("concurrency = %d, want 1", pool.concurrency)
	}
}
