package models

import "time"

// UpstreamState tracks the health of the remote record backend and its
// blocking state. The remote record service consults it before sending a
// save so a failing upstream is not hammered with retries.
type UpstreamState struct {
	IsBlocked     bool       `json:"is_blocked"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
	BlockedReason string     `json:"blocked_reason,omitempty"`
	LastAttempt   time.Time  `json:"last_attempt"`
	LastSuccess   *time.Time `json:"last_success,omitempty"`
	FailureCount  int        `json:"failure_count"`
	SuccessCount  int        `json:"success_count"`
}

// CanSend checks if requests to the upstream are allowed (not blocked)
func (s *UpstreamState) CanSend() bool {
	if !s.IsBlocked {
		return true
	}

	if s.BlockedUntil == nil {
		return false
	}

	// Check if cooling period has passed
	return time.Now().After(*s.BlockedUntil)
}

// SetBlocked marks the upstream as blocked with a cooling period
func (s *UpstreamState) SetBlocked(reason string, coolingPeriod time.Duration) {
	s.IsBlocked = true
	s.BlockedReason = reason
	blockedUntil := time.Now().Add(coolingPeriod)
	s.BlockedUntil = &blockedUntil
	s.LastAttempt = time.Now()
}

// ClearBlock clears the blocked state
func (s *UpstreamState) ClearBlock() {
	s.IsBlocked = false
	s.BlockedUntil = nil
	s.BlockedReason = ""
}

// RecordSuccess records a successful upstream request
func (s *UpstreamState) RecordSuccess() {
	s.SuccessCount++
	s.FailureCount = 0 // Reset failure count on success
	now := time.Now()
	s.LastSuccess = &now
	s.LastAttempt = now
	s.ClearBlock() // Clear any existing block on success
}

// RecordFailure records a failed upstream request
func (s *UpstreamState) RecordFailure() {
	s.FailureCount++
	s.LastAttempt = time.Now()
}
