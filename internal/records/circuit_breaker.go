package records

import (
	"log"
	"sync"
	"time"

	"listing-portal/internal/models"
)

// CircuitBreaker stops save traffic to a failing upstream
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	state               models.UpstreamState
	totalRequests       int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	mutex sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// RecordSuccess records a successful save
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.state.RecordSuccess()
	cb.totalRequests++
	cb.consecutiveFailures = 0
}

// RecordFailure records a failed save (500, 503, etc.)
func (cb *CircuitBreaker) RecordFailure(statusCode int) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.state.RecordFailure()
	cb.consecutiveFailures++
	cb.totalRequests++
	cb.lastFailureTime = time.Now()

	// Consecutive server errors open the breaker immediately
	if cb.consecutiveFailures >= cb.failureThreshold && (statusCode >= 500 || statusCode == 429) {
		cb.isOpen = true
		cb.state.SetBlocked("consecutive upstream errors", cb.resetTimeout)
		log.Printf("[records] circuit open: %d consecutive status %d errors, retry after %v",
			cb.consecutiveFailures, statusCode, cb.resetTimeout)
		return
	}

	// Failure-rate check once enough requests have accumulated
	if cb.totalRequests >= 20 {
		failureRate := float64(cb.state.FailureCount) / float64(cb.totalRequests)
		if failureRate >= 0.40 {
			cb.isOpen = true
			cb.state.SetBlocked("upstream failure rate too high", cb.resetTimeout)
			log.Printf("[records] circuit open: failure rate %.1f%% (%d/%d), retry after %v",
				failureRate*100, cb.state.FailureCount, cb.totalRequests, cb.resetTimeout)
		}
	}
}

// CanProceed checks if saves are allowed
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}

	// Half-open after the reset timeout passes
	if time.Since(cb.lastFailureTime) > cb.resetTimeout {
		log.Printf("[records] circuit half-open after %v", cb.resetTimeout)
		cb.isOpen = false
		cb.totalRequests = 0
		cb.consecutiveFailures = 0
		cb.state.ClearBlock()
		return true
	}

	return false
}

// State returns a copy of the current upstream state
func (cb *CircuitBreaker) State() models.UpstreamState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}
