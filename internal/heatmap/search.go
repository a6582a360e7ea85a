// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/tomtom215/deliveryheat/internal/models"
)

// SearchTerminals returns the terminals whose name contains query, ignoring
// case and diacritics under the rules of tag. An empty query matches nothing.
func SearchTerminals(terminals []models.TerminalMarker, query string, tag language.Tag) []models.TerminalMarker {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.TerminalMarker{}
	}

	matcher := search.New(tag, search.IgnoreCase, search.IgnoreDiacritics)
	pattern := matcher.CompileString(query)

	out := make([]models.TerminalMarker, 0)
	for i := range terminals {
		if start, _ := pattern.IndexString(terminals[i].Name); start >= 0 {
			out = append(out, terminals[i])
		}
	}
	return out
}
