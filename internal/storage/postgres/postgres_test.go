package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/pf2-flat-check/internal/testutil"
)

func TestPool_Health(t *testing.T) {
	pool := testutil.NewOwnedPool(t)
	assert.NoError(t, pool.Health(context.Background(), time.Second))
	assert.True(t, pool.Healthy())
}

func TestPool_WatchStopsWithContext(t *testing.T) {
	pool := testutil.NewOwnedPool(t)
	core, logs := observer.New(zapcore.InfoLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, pool.Watch(ctx, 10*time.Millisecond, time.Second, zap.New(core)))
	assert.True(t, pool.Healthy())
	assert.Zero(t, logs.Len(), "healthy pings are not logged")
}

func TestPool_WatchReportsFailure(t *testing.T) {
	pool := testutil.NewOwnedPool(t)
	core, logs := observer.New(zapcore.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Watch(ctx, 10*time.Millisecond, time.Second, zap.New(core)) }()

	pool.Close()
	require.Eventually(t, func() bool { return !pool.Healthy() }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.NotZero(t, logs.FilterMessage("database health check failed").Len())
}
