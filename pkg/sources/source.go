package sources

import (
	"context"
	"fmt"
	"math"

	"scandiary/pkg/nutrition"
)

type (
	// Query carries the barcode plus whatever identity hints earlier tiers
	// produced; the generic database's text-search strategies need them.
	Query struct {
		Barcode string
		Name    string
		Brand   string
	}

	// Result is one tier's partial nutrient vector plus the identifying
	// fields exactly as that source returned them.
	Result struct {
		Barcode string
		Name    string
		Brand   string
		Vector  *nutrition.Vector
	}

	// Source is one prioritized nutrition data tier. Lookup returns
	// domain.ErrAbsent when the source has no record, a domain
	// TransientError on transport faults, and never retries internally.
	Source interface {
		Name() string
		Lookup(ctx context.Context, q Query) (*Result, error)
	}
)

// coerceFloat pulls a float out of a loosely-typed nutrient map. Upstream
// payloads mix numbers and numeric strings for the same key.
func coerceFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
