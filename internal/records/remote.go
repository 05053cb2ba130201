package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"listing-portal/internal/config"
	"listing-portal/internal/models"
	"listing-portal/internal/serializer"
)

// ErrUpstreamBlocked is returned when the circuit breaker refuses a save.
var ErrUpstreamBlocked = errors.New("upstream is blocked, try again later")

// RemoteService forwards loads and saves to an external listings API as
// multipart/form-data, with retries and a circuit breaker in front.
type RemoteService struct {
	client  *http.Client
	baseURL string
	cfg     config.UpstreamConfig
	breaker *CircuitBreaker
}

// NewRemoteService creates a record service backed by an external API.
func NewRemoteService(cfg config.UpstreamConfig) *RemoteService {
	return &RemoteService{
		client:  &http.Client{Timeout: cfg.GetTimeout()},
		baseURL: cfg.BaseURL,
		cfg:     cfg,
		breaker: NewCircuitBreaker(2, 5*time.Minute),
	}
}

// UpstreamState returns a copy of the breaker's upstream health state.
func (s *RemoteService) UpstreamState() models.UpstreamState {
	return s.breaker.State()
}

// Load fetches the listing from the upstream API.
func (s *RemoteService) Load(ctx context.Context, id string) (*models.Listing, error) {
	url := fmt.Sprintf("%s/api/listings/%s", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build load request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d loading listing %s", resp.StatusCode, id)
	}

	var listing models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing %s: %w", id, err)
	}
	return &listing, nil
}

// Save sends the payload upstream as multipart/form-data and returns the
// updated record from the response. Server errors are retried with a fixed
// delay; 4xx responses are not retried since resending the same payload
// cannot succeed.
func (s *RemoteService) Save(ctx context.Context, id string, payload *serializer.Payload) (*models.Listing, error) {
	if !s.breaker.CanProceed() {
		return nil, ErrUpstreamBlocked
	}

	var body bytes.Buffer
	contentType, err := payload.WriteMultipart(&body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		listing, retryable, err := s.send(ctx, id, body.Bytes(), contentType)
		if err == nil {
			s.breaker.RecordSuccess()
			return listing, nil
		}
		lastErr = err
		if !retryable {
			break
		}

		log.Printf("[records] listing_id=%s save attempt %d/%d failed: %v", id, attempt, s.cfg.MaxRetries, err)
		if attempt < s.cfg.MaxRetries {
			select {
			case <-time.After(s.cfg.GetRetryDelay()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func (s *RemoteService) send(ctx context.Context, id string, body []byte, contentType string) (*models.Listing, bool, error) {
	url := fmt.Sprintf("%s/api/listings/%s", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build save request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		s.breaker.RecordFailure(0)
		return nil, true, fmt.Errorf("failed to send save for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		s.breaker.RecordFailure(resp.StatusCode)
		return nil, true, fmt.Errorf("upstream returned status %d saving listing %s", resp.StatusCode, id)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("upstream rejected save for %s: status %d: %s", id, resp.StatusCode, msg)
	}

	var listing models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, false, fmt.Errorf("failed to decode save response for %s: %w", id, err)
	}
	return &listing, false, nil
}
