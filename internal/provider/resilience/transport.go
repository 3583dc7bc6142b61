// Package resilience provides a resilient HTTP transport with circuit
// breaker and retry logic for external provider calls. It implements
// http.RoundTripper so it can be installed under any provider SDK that
// accepts a custom *http.Client.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// TransportConfig holds configuration for the resilient transport.
type TransportConfig struct {
	// Name identifies this transport for circuit breaker naming.
	Name string

	// Base is the underlying round tripper. Default: http.DefaultTransport.
	Base http.RoundTripper

	// Logger receives circuit breaker state transitions.
	Logger zerolog.Logger

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 5 seconds
	MaxInterval time.Duration

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, defaults apply under the transport's Name.
	CircuitBreaker *CircuitBreakerConfig
}

// CircuitBreakerConfig tunes the breaker guarding the provider.
type CircuitBreakerConfig struct {
	// Name identifies the circuit breaker in logs.
	Name string

	// MaxRequests is the number of probe requests allowed in half-open
	// state. Default: 1
	MaxRequests uint32

	// Timeout is the period of open state before switching to half-open.
	// Default: 60 seconds
	Timeout time.Duration

	// ReadyToTrip determines when to trip the circuit breaker.
	// If nil, uses DefaultReadyToTrip (50% failure rate with 5+ requests).
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// DefaultReadyToTrip trips the circuit breaker when at least 5 requests
// have been made and the failure rate is 50% or higher.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && failureRatio >= 0.5
}

// Transport is an http.RoundTripper with circuit breaker protection and
// exponential-backoff retries on transient failures (5xx, network errors).
type Transport struct {
	base           http.RoundTripper
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         TransportConfig
}

// NewTransport creates a new resilient transport. Breaker state
// transitions are logged at warn level on the configured Logger.
func NewTransport(cfg TransportConfig) *Transport {
	if cfg.Base == nil {
		cfg.Base = http.DefaultTransport
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cb := cfg.CircuitBreaker
	if cb == nil {
		cb = &CircuitBreakerConfig{Name: cfg.Name}
	}

	return &Transport{
		base:           cfg.Base,
		circuitBreaker: newBreaker(*cb, cfg.Logger),
		config:         cfg,
	}
}

func newBreaker(cfg CircuitBreakerConfig, log zerolog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = DefaultReadyToTrip
	}

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.ReadyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// RoundTrip executes the request with circuit breaker protection and retry
// logic. Returns immediately with ErrCircuitOpen if the breaker is open.
// Requests with a non-replayable body (Body set, GetBody nil) are sent once
// without retries.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.config.InitialInterval
	bo.MaxInterval = t.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries

	retries := t.config.MaxRetries
	if req.Body != nil && req.GetBody == nil {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)

	var lastResp *http.Response

	operation := func() error {
		// 5xx responses are returned as errors so they trip the breaker.
		resp, err := t.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			attempt, err := cloneRequest(req)
			if err != nil {
				return nil, backoff.Permanent(err)
			}

			r, err := t.base.RoundTrip(attempt)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			// Network and server errors are retryable.
			return err
		}

		lastResp = resp
		// Success or client error (not retryable).
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err != nil {
		// A 5xx that exhausted retries is still a response the caller can read.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	return lastResp, nil
}

// cloneRequest copies the request for a retry attempt, rewinding the body
// when the request is replayable.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// State returns the current state of the circuit breaker.
func (t *Transport) State() gobreaker.State {
	return t.circuitBreaker.State()
}

// Counts returns the current counts of the circuit breaker.
func (t *Transport) Counts() gobreaker.Counts {
	return t.circuitBreaker.Counts()
}

// Client wraps the transport in an *http.Client with the given timeout,
// ready to hand to a provider SDK.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}
