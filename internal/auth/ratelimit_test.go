package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_LockoutAfterMaxAttempts(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		locked, _ := rl.RecordFailure("1.2.3.4", "alice")
		assert.False(t, locked)

		allowed, _ := rl.Allow("1.2.3.4", "alice")
		assert.True(t, allowed)
	}

	locked, retryAfter := rl.RecordFailure("1.2.3.4", "alice")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, retryAfter)

	allowed, _ := rl.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)
}

func TestRateLimiter_TracksIPAndUsernameSeparately(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     1,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice")

	allowed, _ := rl.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("5.6.7.8", "alice")
	assert.True(t, allowed)

	allowed, _ = rl.Allow("1.2.3.4", "bob")
	assert.True(t, allowed)
}

func TestRateLimiter_SuccessClearsFailures(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice")
	rl.RecordSuccess("1.2.3.4", "alice")
	rl.RecordFailure("1.2.3.4", "alice")

	allowed, _ := rl.Allow("1.2.3.4", "alice")
	assert.True(t, allowed)
}
