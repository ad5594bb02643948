package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadscore_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{Attempts: 3, BaseDelay: time.Millisecond}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.Nop(), fast, "connect", func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoWrapsLastError(t *testing.T) {
	cause := errors.New("refused")
	calls := 0
	err := Do(context.Background(), logger.Nop(), fast, "connect", func() error {
		calls++
		return cause
	})
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "connect")
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, logger.Nop(), fast, "connect", func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDoRejectsEmptyPolicy(t *testing.T) {
	err := Do(context.Background(), logger.Nop(), Policy{}, "connect", func() error { return nil })
	assert.Error(t, err)
}

func TestValueReturnsResult(t *testing.T) {
	v, err := Value(context.Background(), logger.Nop(), fast, "answer", func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPolicyDelayIsQuadratic(t *testing.T) {
	p := Policy{Attempts: 4, BaseDelay: time.Second}
	assert.Equal(t, time.Second, p.delay(1))
	assert.Equal(t, 4*time.Second, p.delay(2))
	assert.Equal(t, 9*time.Second, p.delay(3))
}
