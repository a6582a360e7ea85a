// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package backend is the REST client for the delivery backend that owns
// terminals, order locations and delivery statistics.
//
// Responses are parsed record by record. Records that fail validation are
// dropped and counted; a payload that is not a list is an error.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/deliveryheat/internal/config"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/models"
)

// Endpoint paths relative to the configured base URL.
const (
	EndpointTerminals      = "terminals"
	EndpointOrderLocations = "order-locations"
	EndpointTerminalStats  = "terminal-delivery-stats"
)

// ErrMalformedPayload is returned when a response body is not a JSON list.
var ErrMalformedPayload = errors.New("malformed backend payload")

// HTTPStatusError is returned for non-200 responses.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("backend %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// OrderQuery selects orders by terminal and calendar-day range.
// An empty TerminalIDs means all terminals.
type OrderQuery struct {
	TerminalIDs []string
	Range       models.DateRange
}

// Client is the interface the heat map depends on.
type Client interface {
	FetchTerminals(ctx context.Context) ([]models.Terminal, error)
	FetchOrderLocations(ctx context.Context, q OrderQuery) ([]models.RawOrderLocation, error)
	FetchTerminalStats(ctx context.Context, q OrderQuery) ([]models.TerminalDeliveryStat, error)
}

// HTTPClient talks to the backend over HTTP.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client from configuration.
func NewHTTPClient(cfg *config.BackendConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

// FetchTerminals returns every valid terminal record.
func (c *HTTPClient) FetchTerminals(ctx context.Context) ([]models.Terminal, error) {
	req := newAPIRequest(EndpointTerminals)
	return fetchList(ctx, c, req, decodeTerminal)
}

// FetchOrderLocations returns the raw, unaggregated order destinations.
func (c *HTTPClient) FetchOrderLocations(ctx context.Context, q OrderQuery) ([]models.RawOrderLocation, error) {
	req := newAPIRequest(EndpointOrderLocations).addOrderQuery(q)
	return fetchList(ctx, c, req, decodeOrderLocation)
}

// FetchTerminalStats returns delivery statistics for the selected terminals.
func (c *HTTPClient) FetchTerminalStats(ctx context.Context, q OrderQuery) ([]models.TerminalDeliveryStat, error) {
	req := newAPIRequest(EndpointTerminalStats).addOrderQuery(q)
	return fetchList(ctx, c, req, decodeTerminalStat)
}

// fetchList performs the GET and decodes the body as a list of T.
func fetchList[T any](ctx context.Context, c *HTTPClient, req *apiRequest, decode recordDecoder[T]) ([]T, error) {
	start := time.Now()
	records, err := doList(ctx, c, req, decode)
	metrics.RecordBackendRequest(req.endpoint, time.Since(start), err)
	return records, err
}

func doList[T any](ctx context.Context, c *HTTPClient, req *apiRequest, decode recordDecoder[T]) ([]T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("backend %s: rate limiter: %w", req.endpoint, err)
	}

	body, err := c.executeRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return decodeList(body, req.endpoint, decode)
}
