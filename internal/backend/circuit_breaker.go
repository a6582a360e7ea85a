// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package backend

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/deliveryheat/internal/config"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/models"
)

// ErrUnavailable wraps requests rejected by an open circuit.
var ErrUnavailable = errors.New("backend temporarily unavailable")

// CircuitBreakerClient protects a Client with a circuit breaker so a failing
// backend is not hammered by every open heat map session.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

var _ Client = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps client. The circuit opens once at least
// BreakerMinRequests were made in the interval and the failure ratio reaches
// BreakerFailureRatio. Cancelled requests are not counted as failures.
func NewCircuitBreakerClient(client Client, cfg *config.BackendConfig) *CircuitBreakerClient {
	name := "delivery-backend"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.BreakerFailureRatio
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: name}
}

// State returns the current breaker state as a string.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult converts the untyped breaker result back to a slice.
func castResult[T any](result interface{}, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	typed, ok := result.([]T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// FetchTerminals calls the wrapped client through the breaker.
func (cbc *CircuitBreakerClient) FetchTerminals(ctx context.Context) ([]models.Terminal, error) {
	return castResult[models.Terminal](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchTerminals(ctx)
	}))
}

// FetchOrderLocations calls the wrapped client through the breaker.
func (cbc *CircuitBreakerClient) FetchOrderLocations(ctx context.Context, q OrderQuery) ([]models.RawOrderLocation, error) {
	return castResult[models.RawOrderLocation](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchOrderLocations(ctx, q)
	}))
}

// FetchTerminalStats calls the wrapped client through the breaker.
func (cbc *CircuitBreakerClient) FetchTerminalStats(ctx context.Context, q OrderQuery) ([]models.TerminalDeliveryStat, error) {
	return castResult[models.TerminalDeliveryStat](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchTerminalStats(ctx, q)
	}))
}

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

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
