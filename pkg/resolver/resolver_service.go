package resolver

import (
	"context"
	"errors"
	"log/slog"

	"scandiary/domain"
	"scandiary/pkg/nutrition"
	"scandiary/pkg/sources"
)

type (
	// Resolution is the engine's verdict for one barcode. Vector is never
	// nil; Tier 0 means no source had anything.
	Resolution struct {
		Barcode     string
		Name        string
		Brand       string
		Tier        int
		SourceName  string
		NeedsReview bool
		Vector      *nutrition.Vector
	}

	// ResolverService walks the prioritized sources and always produces a
	// result; the only error it returns is context cancellation.
	ResolverService interface {
		Resolve(ctx context.Context, barcode string) (Resolution, error)
	}

	resolverService struct {
		tiers []sources.Source
		log   *slog.Logger
	}
)

// NewResolverService takes the sources in strict priority order.
func NewResolverService(log *slog.Logger, tiers ...sources.Source) ResolverService {
	return &resolverService{tiers: tiers, log: log}
}

// Resolve queries each tier in order and accepts the first sufficient
// vector: at least one positive value among calories, protein, fat and
// carbohydrate. The last tier is accepted even when all its values are
// zero. Tier faults of any kind fall through to the next tier; a scan is
// never dropped for lack of data, only flagged for review.
func (s *resolverService) Resolve(ctx context.Context, barcode string) (Resolution, error) {
	q := sources.Query{Barcode: barcode}

	var accepted, fallback *sources.Result
	tier, fallbackTier := 0, 0

	for i, src := range s.tiers {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}

		res, err := src.Lookup(ctx, q)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Resolution{}, err
			}
			if !errors.Is(err, domain.ErrAbsent) {
				s.log.Warn("nutrition source failed, falling through",
					"source", src.Name(), "barcode", barcode, "error", err)
			}
			continue
		}

		// Carry identity forward so later text-search strategies can use
		// it even when this tier's nutrients are insufficient.
		if q.Name == "" {
			q.Name = res.Name
		}
		if q.Brand == "" {
			q.Brand = res.Brand
		}

		last := i == len(s.tiers)-1
		if res.Vector.HasPositiveMacro() || last {
			accepted = res
			tier = i + 1
			break
		}
		// Insufficient, but still the best data seen so far. Used when
		// every later tier comes up empty.
		if fallback == nil {
			fallback = res
			fallbackTier = i + 1
		}
	}

	if accepted == nil && fallback != nil {
		accepted = fallback
		tier = fallbackTier
	}

	resolution := Resolution{
		Barcode: barcode,
		Name:    q.Name,
		Brand:   q.Brand,
		Tier:    tier,
	}
	if accepted != nil {
		resolution.Vector = accepted.Vector
		if accepted.Barcode != "" {
			resolution.Barcode = accepted.Barcode
		}
		resolution.Name = accepted.Name
		resolution.Brand = accepted.Brand
		resolution.SourceName = s.tiers[tier-1].Name()
	} else {
		resolution.Vector = nutrition.NewVector()
	}

	resolution.NeedsReview = !resolution.Vector.HasPositiveMacro()
	resolution.Vector.Finalize()
	return resolution, nil
}
