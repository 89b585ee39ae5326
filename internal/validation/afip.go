package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// InscriptionService is the AFIP service queried for taxpayer status.
const InscriptionService = "inscription"

// DefaultErrorKeys are the response keys holding inscription errors.
var DefaultErrorKeys = []string{"errorMonotributo", "errorConstancia", "errorRegimenGeneral"}

// DefaultErrorMessages mark an ID as invalid when found in its errors.
var DefaultErrorMessages = []string{
	"No existe persona con ese Id",
	"La clave se encuentra inactiva",
}

// ErrServiceUnavailable is returned when the requested service is not in
// the configured list of available services.
var ErrServiceUnavailable = errors.New("afip service not available")

// AFIPOptions configures AFIPClient.
type AFIPOptions struct {
	BaseURL  string
	Username string
	Password string

	// ChunkSize is the number of IDs sent per request.
	ChunkSize int

	// MaxCalls requests are made before pausing for PauseDuration.
	MaxCalls      int
	PauseDuration time.Duration

	// MaxRetries is the number of extra attempts after a failed request.
	MaxRetries int
	RetryDelay time.Duration

	Timeout time.Duration

	// ServicesAvailable, when not empty, must contain InscriptionService.
	ServicesAvailable []string

	ErrorKeys     []string
	ErrorMessages []string
}

// APIError reports a failed request to the AFIP service.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("afip request to %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("afip request to %s: %s", e.URL, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// temporary reports whether a retry may succeed.
func (e *APIError) temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// AFIPClient validates IDs against the AFIP inscription service.
//
// IDs are sent in chunks of ChunkSize as a JSON body
//   {"ids": ["20333444556", ...]}
// to POST {BaseURL}/inscription with basic authentication. The response is
// a JSON object keyed by ID whose values carry the error keys.
type AFIPClient struct {
	opts   AFIPOptions
	http   *http.Client
	logger *zap.Logger

	// sleep waits for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAFIPClient returns a client for opts. Zero values fall back to the
// package defaults.
func NewAFIPClient(opts AFIPOptions, logger *zap.Logger) *AFIPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if len(opts.ErrorKeys) == 0 {
		opts.ErrorKeys = DefaultErrorKeys
	}
	if len(opts.ErrorMessages) == 0 {
		opts.ErrorMessages = DefaultErrorMessages
	}

	return &AFIPClient{
		opts:   opts,
		http:   &http.Client{Timeout: opts.Timeout},
		logger: logger,
		sleep:  sleepContext,
	}
}

// Validate implements DocumentValidator.
func (c *AFIPClient) Validate(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		c.logger.Warn("empty document list, skipping AFIP check")
		return nil, nil
	}

	c.logger.Info("consulting AFIP", zap.Int("documents", len(ids)))

	data, err := c.FetchServiceData(ctx, InscriptionService, ids)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		c.logger.Warn("no data fetched from AFIP")
		return nil, nil
	}

	withErrors := AccumulateErrors(data, c.opts.ErrorKeys)
	invalid := FindKeysWithMessages(withErrors, c.opts.ErrorMessages)

	c.logger.Info("AFIP check completed",
		zap.Int("records", len(data)),
		zap.Int("with_errors", len(withErrors)),
		zap.Int("invalid", len(invalid)))
	return invalid, nil
}

// FetchServiceData queries service for ids and merges the responses of all
// chunks.
func (c *AFIPClient) FetchServiceData(ctx context.Context, service string, ids []int64) (map[string]map[string]any, error) {
	if len(c.opts.ServicesAvailable) > 0 && !slices.Contains(c.opts.ServicesAvailable, service) {
		return nil, fmt.Errorf("%w: %s", ErrServiceUnavailable, service)
	}

	endpoint, err := url.JoinPath(c.opts.BaseURL, service)
	if err != nil || c.opts.BaseURL == "" {
		return nil, &APIError{URL: c.opts.BaseURL, Message: "invalid base URL", Cause: err}
	}

	merged := make(map[string]map[string]any, len(ids))
	calls := 0

	for start := 0; start < len(ids); start += c.opts.ChunkSize {
		end := min(start+c.opts.ChunkSize, len(ids))

		if c.opts.MaxCalls > 0 && calls > 0 && calls%c.opts.MaxCalls == 0 {
			c.logger.Debug("pausing between AFIP calls", zap.Duration("pause", c.opts.PauseDuration))
			if err := c.sleep(ctx, c.opts.PauseDuration); err != nil {
				return nil, err
			}
		}

		chunk, err := c.fetchWithRetry(ctx, endpoint, ids[start:end])
		calls++
		if err != nil {
			return nil, err
		}
		for id, record := range chunk {
			merged[id] = record
		}
	}

	return merged, nil
}

func (c *AFIPClient) fetchWithRetry(ctx context.Context, endpoint string, ids []int64) (map[string]map[string]any, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying AFIP request",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			if err := c.sleep(ctx, c.opts.RetryDelay); err != nil {
				return nil, err
			}
		}

		data, err := c.fetchChunk(ctx, endpoint, ids)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.temporary() {
			break
		}
	}

	return nil, lastErr
}

func (c *AFIPClient) fetchChunk(ctx context.Context, endpoint string, ids []int64) (map[string]map[string]any, error) {
	payload := struct {
		IDs []string `json:"ids"`
	}{IDs: make([]string, len(ids))}
	for i, id := range ids {
		payload.IDs[i] = strconv.FormatInt(id, 10)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.opts.Username != "" {
		req.SetBasicAuth(c.opts.Username, c.opts.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{URL: endpoint, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var data map[string]map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &APIError{URL: endpoint, StatusCode: resp.StatusCode, Message: "invalid response body", Cause: err}
	}

	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
