// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/terminals", "200"))

	RecordAPIRequest("GET", "/api/v1/terminals", "200", 12*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/terminals", "200"))
	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("expected %v active requests, got %v", before+1, got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("expected %v active requests, got %v", before, got)
	}
}

func TestRecordBackendRequest(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("connection refused"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := BackendRequestsTotal.WithLabelValues("order-locations", tt.result)
			before := testutil.ToFloat64(counter)

			RecordBackendRequest("order-locations", 50*time.Millisecond, tt.err)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("expected %s counter to increase by 1, got %v", tt.result, got)
			}
		})
	}
}

func TestRecordHeatMapEvent(t *testing.T) {
	applied := HeatMapEvents.WithLabelValues("set_radius_point", "applied")
	rejected := HeatMapEvents.WithLabelValues("set_radius_point", "rejected")
	a0, r0 := testutil.ToFloat64(applied), testutil.ToFloat64(rejected)

	RecordHeatMapEvent("set_radius_point", true)
	RecordHeatMapEvent("set_radius_point", false)
	RecordHeatMapEvent("set_radius_point", false)

	if got := testutil.ToFloat64(applied) - a0; got != 1 {
		t.Errorf("applied delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rejected) - r0; got != 2 {
		t.Errorf("rejected delta = %v, want 2", got)
	}
}
