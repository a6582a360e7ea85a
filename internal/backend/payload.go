// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package backend

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/models"
	"github.com/tomtom215/deliveryheat/internal/validation"
)

// maxPayloadSize bounds a decoded response body.
const maxPayloadSize = 64 << 20

// recordDecoder turns one raw list element into a validated record.
type recordDecoder[T any] func(raw json.RawMessage) (T, error)

// envelope covers the paginated and wrapped list shapes the backend uses.
type envelope struct {
	Results json.RawMessage `json:"results"`
	Data    json.RawMessage `json:"data"`
}

// decodeList accepts a bare JSON array, or an object whose "results" or
// "data" member is an array. Invalid elements are skipped.
func decodeList[T any](body io.Reader, endpoint string, decode recordDecoder[T]) ([]T, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("backend %s: read body: %w", endpoint, err)
	}

	items, err := splitList(data)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", endpoint, err)
	}

	out := make([]T, 0, len(items))
	rejected := 0
	for i, raw := range items {
		rec, err := decode(raw)
		if err != nil {
			rejected++
			logging.Debug().Err(err).Str("endpoint", endpoint).Int("index", i).Msg("dropping invalid backend record")
			continue
		}
		out = append(out, rec)
	}

	if rejected > 0 {
		metrics.BackendRecordsRejected.WithLabelValues(endpoint).Add(float64(rejected))
		logging.Warn().Str("endpoint", endpoint).Int("rejected", rejected).Int("accepted", len(out)).
			Msg("backend returned invalid records")
	}
	return out, nil
}

func splitList(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return items, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		for _, inner := range []json.RawMessage{env.Results, env.Data} {
			inner = bytes.TrimSpace(inner)
			if len(inner) > 0 && inner[0] == '[' {
				return splitList(inner)
			}
		}
		return nil, fmt.Errorf("%w: object without a results or data list", ErrMalformedPayload)
	default:
		return nil, fmt.Errorf("%w: expected a list", ErrMalformedPayload)
	}
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat accepts a number, a numeric string, null or "". Absent and empty
// values leave it unset.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		f.v = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			f.v = nil
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		return f.set(v)
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return f.set(v)
}

func (f *flexFloat) set(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite number %v", v)
	}
	f.v = &v
	return nil
}

func (f flexFloat) or(def float64) float64 {
	if f.v == nil {
		return def
	}
	return *f.v
}

// flexBool accepts a JSON bool, null, 0/1 or "true"/"false".
type flexBool struct {
	v *bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	switch strings.Trim(strings.TrimSpace(string(b)), `"`) {
	case "null", "":
		f.v = nil
	case "true", "1":
		v := true
		f.v = &v
	case "false", "0":
		v := false
		f.v = &v
	default:
		return fmt.Errorf("invalid boolean %s", string(b))
	}
	return nil
}

type terminalRecord struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	Lat      flexFloat  `json:"lat"`
	Lon      flexFloat  `json:"lon"`
	IsActive flexBool   `json:"is_active"`
	Region   *string    `json:"region"`
}

func decodeTerminal(raw json.RawMessage) (models.Terminal, error) {
	var rec terminalRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.Terminal{}, err
	}
	t := models.Terminal{
		ID:     string(rec.ID),
		Name:   strings.TrimSpace(rec.Name),
		Lat:    rec.Lat.v,
		Lon:    rec.Lon.v,
		Active: rec.IsActive.v,
		Region: rec.Region,
	}
	if verr := validation.ValidateStruct(&t); verr != nil {
		return models.Terminal{}, verr
	}
	return t, nil
}

type orderLocationRecord struct {
	ID         flexString `json:"id"`
	ToLat      flexFloat  `json:"to_lat"`
	ToLon      flexFloat  `json:"to_lon"`
	ToAddress  string     `json:"to_address"`
	Status     string     `json:"status"`
	TerminalID flexString `json:"terminal_id"`
}

func decodeOrderLocation(raw json.RawMessage) (models.RawOrderLocation, error) {
	var rec orderLocationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.RawOrderLocation{}, err
	}
	o := models.RawOrderLocation{
		ID:         string(rec.ID),
		ToLat:      rec.ToLat.v,
		ToLon:      rec.ToLon.v,
		ToAddress:  rec.ToAddress,
		Status:     rec.Status,
		TerminalID: string(rec.TerminalID),
	}
	if verr := validation.ValidateStruct(&o); verr != nil {
		return models.RawOrderLocation{}, verr
	}
	return o, nil
}

type terminalStatRecord struct {
	TerminalID     flexString `json:"terminal_id"`
	TerminalName   string     `json:"terminal_name"`
	TotalOrders    flexFloat  `json:"total_orders"`
	AvgDelivery    flexFloat  `json:"avg_delivery_time"`
	FastestDeliver flexFloat  `json:"fastest_delivery_time"`
	SlowestDeliver flexFloat  `json:"slowest_delivery_time"`
	FastestOrderID flexString `json:"fastest_order_id"`
	SlowestOrderID flexString `json:"slowest_order_id"`
}

func decodeTerminalStat(raw json.RawMessage) (models.TerminalDeliveryStat, error) {
	var rec terminalStatRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.TerminalDeliveryStat{}, err
	}
	s := models.TerminalDeliveryStat{
		TerminalID:             string(rec.TerminalID),
		TerminalName:           rec.TerminalName,
		TotalOrders:            int(rec.TotalOrders.or(0)),
		AvgDeliveryMinutes:     rec.AvgDelivery.or(0),
		FastestDeliveryMinutes: rec.FastestDeliver.or(0),
		SlowestDeliveryMinutes: rec.SlowestDeliver.or(0),
		FastestOrderID:         string(rec.FastestOrderID),
		SlowestOrderID:         string(rec.SlowestOrderID),
	}
	if verr := validation.ValidateStruct(&s); verr != nil {
		return models.TerminalDeliveryStat{}, verr
	}
	return s, nil
}
