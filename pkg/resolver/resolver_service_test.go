package resolver

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandiary/domain"
	"scandiary/pkg/nutrition"
	"scandiary/pkg/sources"
)

type fakeSource struct {
	name    string
	result  *sources.Result
	err     error
	calls   int
	queries []sources.Query
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Lookup(_ context.Context, q sources.Query) (*sources.Result, error) {
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func vectorWith(p nutrition.Provenance, values map[nutrition.Key]float64) *nutrition.Vector {
	v := nutrition.NewVector()
	for k, val := range values {
		v.Set(k, val, p)
	}
	return v
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveAcceptsSufficientTierOne(t *testing.T) {
	tier1 := &fakeSource{name: "declared-label", result: &sources.Result{
		Barcode: "123", Name: "Oat Crunch", Brand: "Acme",
		Vector: vectorWith(nutrition.ProvenanceDeclared, map[nutrition.Key]float64{
			nutrition.KeyCalories:     250,
			nutrition.KeyProtein:      10,
			nutrition.KeyFat:          5,
			nutrition.KeyCarbs:        30,
			nutrition.KeyDietaryFiber: 3,
		}),
	}}
	tier2 := &fakeSource{name: "estimated", err: domain.ErrAbsent}
	tier3 := &fakeSource{name: "generic-db", err: domain.ErrAbsent}

	res, err := NewResolverService(testLogger(), tier1, tier2, tier3).Resolve(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Tier)
	assert.False(t, res.NeedsReview)
	assert.Equal(t, 27.0, res.Vector.Value(nutrition.KeyNetCarbs))
	assert.True(t, res.Vector.Finalized())

	// Strict priority: later tiers are never consulted.
	assert.Equal(t, 0, tier2.calls)
	assert.Equal(t, 0, tier3.calls)
}

func TestResolveFallsThroughToTierTwo(t *testing.T) {
	tier1 := &fakeSource{name: "declared-label", result: &sources.Result{
		Barcode: "123", Name: "Mystery Bar",
		Vector: vectorWith(nutrition.ProvenanceDeclared, map[nutrition.Key]float64{
			nutrition.KeyCalories: 0,
		}),
	}}
	tier2 := &fakeSource{name: "estimated", result: &sources.Result{
		Barcode: "123", Name: "Mystery Bar",
		Vector: vectorWith(nutrition.ProvenanceEstimated, map[nutrition.Key]float64{
			nutrition.KeyCalories: 180,
			nutrition.KeyFat:      7,
		}),
	}}
	tier3 := &fakeSource{name: "generic-db", err: domain.ErrAbsent}

	res, err := NewResolverService(testLogger(), tier1, tier2, tier3).Resolve(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Tier)
	assert.Equal(t, "estimated", res.SourceName)
	assert.False(t, res.NeedsReview)
	assert.Equal(t, 0, tier3.calls)
}

func TestResolveAcceptsZeroMacroLastTierWithReview(t *testing.T) {
	tier1 := &fakeSource{name: "declared-label", err: domain.ErrAbsent}
	tier2 := &fakeSource{name: "estimated", err: domain.ErrAbsent}
	tier3 := &fakeSource{name: "generic-db", result: &sources.Result{
		Barcode: "456", Name: "Obscure Snack",
		Vector: vectorWith(nutrition.ProvenanceExternal, map[nutrition.Key]float64{
			nutrition.KeyCalories: 0,
			nutrition.KeyProtein:  0,
		}),
	}}

	res, err := NewResolverService(testLogger(), tier1, tier2, tier3).Resolve(context.Background(), "456")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Tier)
	assert.True(t, res.NeedsReview)
	assert.Equal(t, "Obscure Snack", res.Name)
}

func TestResolveAllTiersAbsent(t *testing.T) {
	tier1 := &fakeSource{name: "declared-label", err: domain.ErrAbsent}
	tier2 := &fakeSource{name: "estimated", err: domain.ErrAbsent}
	tier3 := &fakeSource{name: "generic-db", err: domain.ErrAbsent}

	res, err := NewResolverService(testLogger(), tier1, tier2, tier3).Resolve(context.Background(), "789")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Tier)
	assert.True(t, res.NeedsReview)
	assert.Equal(t, "789", res.Barcode)
	assert.False(t, res.Vector.HasPositiveMacro())
	assert.Equal(t, 0, res.Vector.Len())
}

func TestResolveTransientFaultFallsThrough(t *testing.T) {
	tier1 := &fakeSource{name: "declared-label", err: domain.Transient("barcode lookup", assert.AnError)}
	tier2 := &fakeSource{name: "estimated", err: domain.ErrAbsent}
	tier3 := &fakeSource{name: "generic-db", result: &sources.Result{
		Barcode: "123", Name: "Fallback Food",
		Vector: vectorWith(nutrition.ProvenanceExternal, map[nutrition.Key]float64{
			nutrition.KeyCalories: 90,
		}),
	}}

	res, err := NewResolverService(testLogger(), tier1, tier2, tier3).Resolve(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Tier)
	assert.False(t, res.NeedsReview)
}

func TestResolveCarriesIdentityHintsToLaterTiers(t *testing.T) {
	// Tier 1 knows the product but has no usable macros; tier 3's text
	// search should see the name and brand.
	tier1 := &fakeSource{name: "declared-label", result: &sources.Result{
		Barcode: "123", Name: "GRANOLA BITES", Brand: "ACME",
		Vector: nutrition.NewVector(),
	}}
	tier2 := &fakeSource{name: "estimated", err: domain.ErrAbsent}
	tier3 := &fakeSource{name: "generic-db", err: domain.ErrAbsent}

	res, err := NewResolverService(testLogger(), tier1, tier2, tier3).Resolve(context.Background(), "123")
	require.NoError(t, err)

	require.Len(t, tier3.queries, 1)
	assert.Equal(t, "GRANOLA BITES", tier3.queries[0].Name)
	assert.Equal(t, "ACME", tier3.queries[0].Brand)

	// Tier 1's empty vector still backs the review-flagged result.
	assert.Equal(t, 1, res.Tier)
	assert.True(t, res.NeedsReview)
	assert.Equal(t, "GRANOLA BITES", res.Name)
}

func TestResolveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tier1 := &fakeSource{name: "declared-label", err: domain.ErrAbsent}
	_, err := NewResolverService(testLogger(), tier1).Resolve(ctx, "123")
	assert.ErrorIs(t, err, context.Canceled)
}
