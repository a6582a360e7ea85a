// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBodySize bounds how much of an error response is kept.
const maxErrorBodySize = 64 * 1024

type apiRequest struct {
	endpoint string
	params   url.Values
}

func newAPIRequest(endpoint string) *apiRequest {
	return &apiRequest{endpoint: endpoint, params: url.Values{}}
}

// addParam sets key unless value is empty.
func (r *apiRequest) addParam(key, value string) *apiRequest {
	if value != "" {
		r.params.Set(key, value)
	}
	return r
}

// addOrderQuery adds terminal_id (comma joined), from_date and to_date.
func (r *apiRequest) addOrderQuery(q OrderQuery) *apiRequest {
	r.addParam("terminal_id", strings.Join(q.TerminalIDs, ","))
	if !q.Range.From.IsZero() {
		r.addParam("from_date", q.Range.FromParam())
	}
	if !q.Range.To.IsZero() {
		r.addParam("to_date", q.Range.ToParam())
	}
	return r
}

func (r *apiRequest) buildURL(baseURL string) string {
	u := baseURL + "/" + r.endpoint
	if len(r.params) == 0 {
		return u
	}
	return u + "?" + r.params.Encode()
}

func (c *HTTPClient) executeRequest(ctx context.Context, req *apiRequest) (io.ReadCloser, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.buildURL(c.baseURL), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend %s request failed: %w", req.endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, &HTTPStatusError{
			Endpoint:   req.endpoint,
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		}
	}
	return resp.Body, nil
}

func readBodyForError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil {
		return "(failed to read body)"
	}
	return strings.TrimSpace(string(data))
}
