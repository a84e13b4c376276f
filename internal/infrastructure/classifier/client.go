// Package classifier calls a remote sentiment-analysis endpoint and reduces
// its scored labels to a domain.Sentiment. Every failure degrades to neutral.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Failure stages, also used as metric label values.
const (
	StageTransport   = "transport"
	StageStatus      = "status"
	StageDecode      = "decode"
	StageEmpty       = "empty"
	StageBreakerOpen = "breaker_open"
)

// TransportError describes why a classification fell back to neutral.
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("classifier %s: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Config holds the endpoint settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client implements ports.Classifier over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
	cb   *gobreaker.CircuitBreaker
	log  zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBreakerSettings replaces the default circuit breaker settings.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) { c.cb = newBreaker(st, c.log) }
}

func NewClient(cfg Config, log zerolog.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With().Str("component", "classifier").Logger(),
	}
	c.cb = newBreaker(DefaultBreakerSettings(), c.log)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBreakerSettings opens after 5 requests with at least 60% failures
// and probes again after 30s.
func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	}
}

func newBreaker(st gobreaker.Settings, log zerolog.Logger) *gobreaker.CircuitBreaker {
	if st.IsSuccessful == nil {
		st.IsSuccessful = endpointHealthy
	}
	next := st.OnStateChange
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		metrics.ClassifierBreakerState.Set(stateToFloat(to))
		if next != nil {
			next(name, from, to)
		}
	}
	return gobreaker.NewCircuitBreaker(st)
}

// endpointHealthy counts only endpoint faults against the breaker. A call
// abandoned because the caller's context ended returns a bare context error.
func endpointHealthy(err error) bool {
	var te *TransportError
	return err == nil || !errors.As(err, &te)
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Classify returns the sentiment of text. It never fails: transport, status
// and decode problems are logged and yield domain.SentimentNeutral.
//
// When ctx ends before a label is obtained the result is also neutral but no
// failure is recorded; callers check ctx.Err() before using it.
func (c *Client) Classify(ctx context.Context, text string) domain.Sentiment {
	s, err := c.classify(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			c.log.Debug().Err(err).Msg("classification abandoned")
			return domain.SentimentNeutral
		}
		stage := StageTransport
		var te *TransportError
		if errors.As(err, &te) {
			stage = te.Stage
		}
		metrics.ClassifierFailuresTotal.WithLabelValues(stage).Inc()
		c.log.Warn().Err(err).Str("stage", stage).Msg("classification fell back to neutral")
		return domain.SentimentNeutral
	}
	return s
}

func (c *Client) classify(ctx context.Context, text string) (domain.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &TransportError{Stage: StageBreakerOpen, Err: err}
		}
		return "", err
	}
	return pick(res.([]Score))
}

type request struct {
	Inputs string `json:"inputs"`
}

// Score is one label produced by the endpoint.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *Client) call(ctx context.Context, text string) ([]Score, error) {
	body, err := json.Marshal(request{Inputs: text})
	if err != nil {
		return nil, &TransportError{Stage: StageTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Stage: StageTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Stage: StageTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Stage: StageTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Stage: StageStatus, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	scores, err := decodeScores(raw)
	if err != nil {
		return nil, &TransportError{Stage: StageDecode, Err: err}
	}
	return scores, nil
}

// decodeScores accepts both [[{label,score}]] and [{label,score}].
func decodeScores(raw []byte) ([]Score, error) {
	var nested [][]Score
	if err := json.Unmarshal(raw, &nested); err == nil {
		var flat []Score
		for _, group := range nested {
			flat = append(flat, group...)
		}
		return flat, nil
	}

	var flat []Score
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}

// pick maps the highest-scoring label to a sentiment.
func pick(scores []Score) (domain.Sentiment, error) {
	if len(scores) == 0 {
		return "", &TransportError{Stage: StageEmpty, Err: errors.New("no labels in response")}
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return domain.SentimentFromLabel(best.Label), nil
}
