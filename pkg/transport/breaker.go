package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for the circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker (used in metrics and logs).
	Name string `mapstructure:"name"`

	// MaxRequests is the maximum number of requests allowed in the half-open state.
	// 0 means 1 request is allowed.
	MaxRequests uint32 `mapstructure:"maxRequests"`

	// Interval is the cyclic period of the closed state for clearing internal counts.
	Interval time.Duration `mapstructure:"interval"`

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration `mapstructure:"timeout"`

	// FailureRatio is the ratio of failures to total requests that trips the breaker.
	FailureRatio float64 `mapstructure:"failureRatio"`

	// MinRequests is the minimum number of requests needed before the failure ratio is evaluated.
	MinRequests uint32 `mapstructure:"minRequests"`
}

// DefaultBreakerConfig returns sensible defaults for a circuit breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// ErrCircuitOpen is returned (wrapped in a CodeTransport error) while the
// breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

// errServerStatus marks a 5xx as a breaker failure; the response itself is
// still handed back to the caller.
var errServerStatus = errors.New("server error status")

func stateToFloat(state gobreaker.State) float64 {
	switch state {
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

func newBreaker(cfg BreakerConfig, c *Client) *gobreaker.CircuitBreaker[*http.Response] {
	if cfg.Name == "" {
		cfg.Name = "aquakeys-api"
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Warn("circuit breaker state change",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			}
			c.metrics.breakerState(name, stateToFloat(to))
		},
	}
	return gobreaker.NewCircuitBreaker[*http.Response](settings)
}

// do sends r through the breaker when one is configured.
func (c *Client) do(r *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(r)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if errors.Is(err, errServerStatus) {
		return resp, nil
	}
	return resp, err
}

// BreakerState reports the breaker state, or StateClosed when there is none.
func (c *Client) BreakerState() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}
