// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package services

import (
	"context"
	"time"

	"github.com/tomtom215/deliveryheat/internal/logging"
)

// Sweeper is satisfied by *heatmap.Registry.
type Sweeper interface {
	CleanupExpired() int
}

// SessionJanitorService closes heat map sessions that have been idle longer
// than the registry TTL. Expired sessions are otherwise only noticed when the
// registry is touched.
type SessionJanitorService struct {
	sweeper  Sweeper
	interval time.Duration
	name     string
}

// NewSessionJanitorService sweeps every interval. A non-positive interval
// means one minute.
func NewSessionJanitorService(sweeper Sweeper, interval time.Duration) *SessionJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionJanitorService{
		sweeper:  sweeper,
		interval: interval,
		name:     "session-janitor",
	}
}

// Serve sweeps on a ticker until ctx is done.
func (s *SessionJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweeper.CleanupExpired(); n > 0 {
				logging.Debug().Int("closed", n).Msg("expired heat map sessions closed")
			}
		}
	}
}

// String implements fmt.Stringer.
func (s *SessionJanitorService) String() string {
	return s.name
}
