package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitOpensOnConsecutiveServerErrors(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)

	assert.True(t, cb.CanProceed())
	cb.RecordFailure(500)
	assert.True(t, cb.CanProceed(), "one failure stays under the threshold")

	cb.RecordFailure(503)
	assert.False(t, cb.CanProceed())
	assert.True(t, cb.State().IsBlocked)
}

func TestCircuitIgnoresConsecutiveClientErrors(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)

	cb.RecordFailure(400)
	cb.RecordFailure(404)
	cb.RecordFailure(422)
	assert.True(t, cb.CanProceed(), "client errors do not open the circuit")
}

func TestSuccessResetsConsecutiveCount(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)

	cb.RecordFailure(500)
	cb.RecordSuccess()
	cb.RecordFailure(500)
	assert.True(t, cb.CanProceed())
}

func TestCircuitOpensOnFailureRate(t *testing.T) {
	cb := NewCircuitBreaker(100, time.Minute)

	// 12 successes then 8 failures: 40% failure rate over 20 requests
	for i := 0; i < 12; i++ {
		cb.RecordSuccess()
	}
	for i := 0; i < 8; i++ {
		cb.RecordFailure(500)
	}

	assert.False(t, cb.CanProceed())
}

func TestCircuitHalfOpensAfterResetTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	cb.RecordFailure(500)
	assert.False(t, cb.CanProceed())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.CanProceed())
	assert.False(t, cb.State().IsBlocked)

	// Counters reset with the half-open transition
	cb.RecordFailure(500)
	assert.False(t, cb.CanProceed())
}
