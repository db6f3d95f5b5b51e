package srv

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleanup(t *testing.T) {
	called := false
	svc := NewCleanup(func() error {
		called = true
		return errors.New("close failed")
	})

	require.NoError(t, svc.Start(context.Background()))
	err := svc.Shutdown(context.Background())
	assert.True(t, called)
	assert.EqualError(t, err, "close failed")
}

func TestNewPeriodic_RunsUntilShutdown(t *testing.T) {
	var runs atomic.Int32
	svc := NewPeriodic(5*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Shutdown(context.Background()))
	// Second shutdown must not panic on a closed channel
	require.NoError(t, svc.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("periodic service did not stop")
	}
}

func TestNewPeriodic_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewPeriodic(time.Hour, func(ctx context.Context) {})

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("periodic service ignored cancellation")
	}
}
