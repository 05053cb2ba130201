package ratelimit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowRequestPerMinuteLimit(t *testing.T) {
	rl := NewRateLimiter(3, 100, 1000, true)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowRequest("session-a"), "request %d within limit", i+1)
	}
	assert.False(t, rl.AllowRequest("session-a"))
}

func TestKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 100, 1000, true)

	assert.True(t, rl.AllowRequest("session-a"))
	assert.False(t, rl.AllowRequest("session-a"))
	assert.True(t, rl.AllowRequest("session-b"), "one hot session must not starve the others")
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, false)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.AllowRequest("session-a"))
	}
	assert.False(t, rl.GetStats("session-a").Enabled)
}

func TestHourlyLimitIndependentOfMinute(t *testing.T) {
	rl := NewRateLimiter(100, 2, 1000, true)

	assert.True(t, rl.AllowRequest("s"))
	assert.True(t, rl.AllowRequest("s"))
	assert.False(t, rl.AllowRequest("s"), "hourly limit binds even under the minute limit")
}

func TestGetStats(t *testing.T) {
	rl := NewRateLimiter(10, 100, 1000, true)

	rl.AllowRequest("s")
	rl.AllowRequest("s")

	stats := rl.GetStats("s")
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.RequestsLastMinute)
	assert.Equal(t, 8, stats.RemainingThisMinute)
	assert.Equal(t, 10, stats.LimitPerMinute)

	// Unknown key reports a clean window
	empty := rl.GetStats("unseen")
	assert.Equal(t, 0, empty.RequestsLastMinute)
	assert.Equal(t, 10, empty.RemainingThisMinute)
}

func TestForgetDropsKeyState(t *testing.T) {
	rl := NewRateLimiter(1, 100, 1000, true)

	assert.True(t, rl.AllowRequest("session-a"))
	assert.False(t, rl.AllowRequest("session-a"))

	rl.Forget("session-a")
	assert.True(t, rl.AllowRequest("session-a"), "a reopened session starts with a fresh window")
}

func TestReset(t *testing.T) {
	rl := NewRateLimiter(1, 100, 1000, true)
	for i := 0; i < 5; i++ {
		rl.AllowRequest(fmt.Sprintf("session-%d", i))
	}

	rl.Reset()
	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowRequest(fmt.Sprintf("session-%d", i)))
	}
}
