// Package symbols maps venue-specific instrument identifiers to canonical
// symbols and position-size multipliers.
package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/trade-board/internal/logging"
)

// Entry maps one raw venue symbol to a canonical symbol. Micro contracts
// carry a fractional multiplier relative to their full-size contract.
type Entry struct {
	MapTo      string  `json:"mapTo"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// Map is keyed by the raw symbol id as delivered by the platform APIs.
type Map map[string]Entry

// Default returns the built-in symbol map covering the CME futures the
// dashboard tracks: ES/NQ/GC/CL full-size and micro contracts.
func Default() Map {
	return Map{
		"F.US.EP":  {MapTo: "es"},
		"F.US.MES": {MapTo: "es", Multiplier: 0.1},
		"F.US.ENQ": {MapTo: "nq"},
		"F.US.MNQ": {MapTo: "nq", Multiplier: 0.1},
		"F.US.GCE": {MapTo: "gc"},
		"F.US.MGC": {MapTo: "gc", Multiplier: 0.1},
		"F.US.CLE": {MapTo: "cl"},
		"F.US.MCL": {MapTo: "cl", Multiplier: 0.1},
	}
}

// LoadFile reads a symbol map from a JSON file. Entries with a non-positive
// multiplier are rejected; a zero multiplier means "unset" and defaults to 1
// at normalization time.
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol map %s: %w", path, err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse symbol map %s: %w", path, err)
	}

	for raw, entry := range m {
		if entry.MapTo == "" {
			return nil, fmt.Errorf("symbol map entry %s has no mapTo", raw)
		}
		if entry.Multiplier < 0 {
			return nil, fmt.Errorf("symbol map entry %s has negative multiplier %v", raw, entry.Multiplier)
		}
	}

	return m, nil
}

// Normalize resolves a raw venue symbol to its canonical symbol and position
// multiplier. Unmapped symbols pass through unchanged with multiplier 1; that
// is an anomaly worth surfacing, not a failure.
func (m Map) Normalize(ctx context.Context, rawSymbol string) (string, float64) {
	entry, ok := m[rawSymbol]
	if !ok {
		logging.FromContext(ctx).WithField("symbol", rawSymbol).Warn("Unmapped venue symbol, passing through")
		return rawSymbol, 1
	}

	multiplier := entry.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	return entry.MapTo, multiplier
}

// Canonical returns the distinct canonical symbols in sorted order. Feeds the
// chart symbol selector.
func (m Map) Canonical() []string {
	seen := make(map[string]bool, len(m))
	for _, entry := range m {
		seen[entry.MapTo] = true
	}

	out := make([]string, 0, len(seen))
	for symbol := range seen {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
