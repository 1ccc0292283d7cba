package utils

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func quietLogger() *Logger { return NewLoggerTo(io.Discard, io.Discard) }

func TestRetrySingleAttemptReturnsRawError(t *testing.T) {
	errBoom := errors.New("boom")
	calls := 0
	r := &RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, Logger: quietLogger()}

	err := r.Do(context.Background(), "op", func() error {
		calls++
		return errBoom
	})
	if err != errBoom {
		t.Errorf("got %v, want the unwrapped error", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: quietLogger()}

	err := r.Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	errBoom := errors.New("boom")
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: quietLogger()}

	err := r.Do(context.Background(), "op", func() error { return errBoom })
	if !errors.Is(err, errBoom) {
		t.Errorf("error should wrap the last failure, got %v", err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: quietLogger()}

	err := r.Do(ctx, "op", func() error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}
