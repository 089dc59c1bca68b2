package sources

import (
	"context"

	"scandiary/domain"
	"scandiary/pkg/nutrition"
)

// EstimatedSource is tier 2: nutrients computed from the product record's
// ingredient list. Same record as tier 1, different section, weaker
// provenance.
type EstimatedSource struct {
	client FoodFactsClient
}

func NewEstimatedSource(client FoodFactsClient) *EstimatedSource {
	return &EstimatedSource{client: client}
}

func (s *EstimatedSource) Name() string { return "estimated" }

func (s *EstimatedSource) Lookup(ctx context.Context, q Query) (*Result, error) {
	record, err := s.client.ProductByBarcode(ctx, q.Barcode)
	if err != nil {
		return nil, err
	}
	if len(record.NutrimentsEstimated) == 0 {
		return nil, domain.ErrAbsent
	}
	return &Result{
		Barcode: record.Code,
		Name:    record.Name,
		Brand:   record.Brand,
		Vector:  vectorFromOFF(record.NutrimentsEstimated, nutrition.ProvenanceEstimated),
	}, nil
}
