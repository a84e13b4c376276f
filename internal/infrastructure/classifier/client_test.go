package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL, APIKey: "secret", Timeout: 500 * time.Millisecond}, zerolog.Nop(), opts...)
}

func TestClassify_SendsInputsAndBearerKey(t *testing.T) {
	var gotAuth string
	var gotBody request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[[{"label":"positive","score":0.9},{"label":"negative","score":0.1}]]`))
	})

	got := c.Classify(context.Background(), "Great event!")

	assert.Equal(t, domain.SentimentPositive, got)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Great event!", gotBody.Inputs)
}

func TestClassify_PicksHighestScore(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.Sentiment
	}{
		{"nested negative", `[[{"label":"positive","score":0.2},{"label":"NEGATIVE","score":0.7}]]`, domain.SentimentNegative},
		{"flat positive", `[{"label":"negative","score":0.3},{"label":"positive","score":0.6}]`, domain.SentimentPositive},
		{"unknown label is neutral", `[[{"label":"LABEL_1","score":0.99}]]`, domain.SentimentNeutral},
		{"explicit neutral", `[[{"label":"neutral","score":0.8},{"label":"positive","score":0.1}]]`, domain.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			assert.Equal(t, tt.want, c.Classify(context.Background(), "text"))
		})
	}
}

func TestClassify_FailuresFallBackToNeutral(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":"model loading"`))
		}},
		{"empty list", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}},
		{"timeout", func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(time.Second)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			assert.Equal(t, domain.SentimentNeutral, c.Classify(context.Background(), "text"))
		})
	}
}

func TestClassify_UnreachableEndpoint(t *testing.T) {
	c := NewClient(Config{URL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, zerolog.Nop())
	assert.Equal(t, domain.SentimentNeutral, c.Classify(context.Background(), "text"))
}

func TestClassify_StageIsReported(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.classify(context.Background(), "text")

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StageStatus, te.Stage)
}

func TestClassify_BreakerOpensAndSkipsCalls(t *testing.T) {
	var calls atomic.Int32
	st := DefaultBreakerSettings()
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 2 }
	st.Timeout = time.Minute

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithBreakerSettings(st))

	for i := 0; i < 2; i++ {
		assert.Equal(t, domain.SentimentNeutral, c.Classify(context.Background(), "text"))
	}
	require.Equal(t, int32(2), calls.Load())

	_, err := c.classify(context.Background(), "text")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StageBreakerOpen, te.Stage)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClassify_CancelledContextIsNotAFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[[{"label":"positive","score":0.9}]]`))
	})
	before := testutil.ToFloat64(metrics.ClassifierFailuresTotal.WithLabelValues(StageTransport))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.classify(ctx, "text")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.SentimentNeutral, c.Classify(ctx, "text"))
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, before, testutil.ToFloat64(metrics.ClassifierFailuresTotal.WithLabelValues(StageTransport)))
	assert.Equal(t, uint32(0), c.cb.Counts().Requests)
}

func TestClassify_CancelMidCallDoesNotTripBreaker(t *testing.T) {
	arrived := make(chan struct{}, 1)
	st := DefaultBreakerSettings()
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 1 }

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slow") == "" {
			_, _ = w.Write([]byte(`[[{"label":"positive","score":0.9}]]`))
			return
		}
		arrived <- struct{}{}
		<-r.Context().Done()
	}, WithBreakerSettings(st))
	base := c.cfg.URL
	c.cfg.URL = base + "?slow=1"

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-arrived
		cancel()
	}()
	_, err := c.classify(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, c.cb.State())
	assert.Equal(t, uint32(0), c.cb.Counts().TotalFailures)

	c.cfg.URL = base
	assert.Equal(t, domain.SentimentPositive, c.Classify(context.Background(), "text"))
}

func TestDecodeScores(t *testing.T) {
	scores, err := decodeScores([]byte(`[[{"label":"a","score":0.5}],[{"label":"b","score":0.4}]]`))
	require.NoError(t, err)
	assert.Len(t, scores, 2)

	_, err = decodeScores([]byte(`"nope"`))
	assert.Error(t, err)
}
