package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Settings{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, zap.NewNop())
	boom := errors.New("boom")

	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_RecoversAfterTimeout(t *testing.T) {
	b := New("test", Settings{ConsecutiveFailures: 1, OpenTimeout: 20 * time.Millisecond}, zap.NewNop())

	_ = b.Do(func() error { return errors.New("boom") })
	assert.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)
	assert.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := New("test", Settings{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, zap.NewNop())
	boom := errors.New("boom")

	_ = b.Do(func() error { return boom })
	assert.NoError(t, b.Do(func() error { return nil }))
	_ = b.Do(func() error { return boom })

	assert.Equal(t, "closed", b.State())
}
