package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	ctx := context.Background()
	retrier := NewDefaultRetrier()

	counter := 0
	var resultValue int
	operation := func() error {
		counter++
		resultValue = 42
		return nil
	}

	err := retrier.Do(ctx, operation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultValue != 42 {
		t.Errorf("expected 42, got %d", resultValue)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	ctx := context.Background()
	retrier := NewDefaultRetrier()

	counter := 0
	var resultValue int
	operation := func() error {
		counter++
		if counter < 2 {
			return errors.New("temporary error")
		}
		resultValue = 42
		return nil
	}

	err := retrier.Do(ctx, operation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultValue != 42 {
		t.Errorf("expected 42, got %d", resultValue)
	}
	if counter != 2 {
		t.Errorf("expected 2 attempts, got %d", counter)
	}
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	ctx := context.Background()
	config := NewDefaultConfig()
	config.MaxRetries = 2
	retrier := NewRetrier(config)

	expectedErr := errors.New("permanent error")
	counter := 0
	operation := func() error {
		counter++
		return expectedErr
	}

	err := retrier.Do(ctx, operation)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) { // Use errors.Is for checking wrapped errors, though here it's direct.
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if counter != 3 { // Initial try + 2 retries
		t.Errorf("expected 3 attempts, got %d", counter)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewDefaultRetrier()

	operation := func() error {
		cancel() // Cancel the context during the operation
		return errors.New("operation error after cancel")
	}

	err := retrier.Do(ctx, operation)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:    retries,
		BackoffFactor: 2.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	}
}

func TestRetry_PermanentErrorStopsImmediately(t *testing.T) {
	ctx := context.Background()
	retrier := NewRetrier(fastConfig(5))

	expectedErr := errors.New("bad token")
	counter := 0
	err := retrier.Do(ctx, func() error {
		counter++
		return Permanent(expectedErr)
	})

	if err != expectedErr {
		t.Errorf("expected unwrapped %v, got %v", expectedErr, err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
}

func TestRetry_Permanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("expected Permanent(nil) to be nil")
	}
}

func TestRetry_WithNotify(t *testing.T) {
	ctx := context.Background()
	var attempts []int
	retrier := NewRetrier(fastConfig(2)).WithNotify(func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
		if next <= 0 {
			t.Errorf("expected positive delay, got %v", next)
		}
	})

	_ = retrier.Do(ctx, func() error { return errors.New("network down") })

	// Notify fires before each wait, never after the final attempt
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("unexpected notify attempts: %v", attempts)
	}
}
