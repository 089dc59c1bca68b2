package sources

import (
	"context"

	"scandiary/pkg/nutrition"
)

// offNutrients maps the product database's per-100g keys into the
// canonical vector. OpenFoodFacts reports everything except energy in
// grams, so mineral and vitamin values scale up to milligrams.
var offNutrients = []struct {
	off   string
	key   nutrition.Key
	scale float64
}{
	{"energy-kcal_100g", nutrition.KeyCalories, 1},
	{"proteins_100g", nutrition.KeyProtein, 1},
	{"carbohydrates_100g", nutrition.KeyCarbs, 1},
	{"fat_100g", nutrition.KeyFat, 1},
	{"saturated-fat_100g", nutrition.KeySaturatedFat, 1},
	{"polyunsaturated-fat_100g", nutrition.KeyPolyunsaturatedFat, 1},
	{"monounsaturated-fat_100g", nutrition.KeyMonounsaturatedFat, 1},
	{"trans-fat_100g", nutrition.KeyTransFat, 1},
	{"cholesterol_100g", nutrition.KeyCholesterol, 1000},
	{"sodium_100g", nutrition.KeySodium, 1000},
	{"potassium_100g", nutrition.KeyPotassium, 1000},
	{"fiber_100g", nutrition.KeyDietaryFiber, 1},
	{"sugars_100g", nutrition.KeySugars, 1},
	{"vitamin-a_100g", nutrition.KeyVitaminA, 1000},
	{"vitamin-c_100g", nutrition.KeyVitaminC, 1000},
	{"calcium_100g", nutrition.KeyCalcium, 1000},
	{"iron_100g", nutrition.KeyIron, 1000},
}

func vectorFromOFF(m map[string]any, p nutrition.Provenance) *nutrition.Vector {
	v := nutrition.NewVector()
	for _, n := range offNutrients {
		if raw, ok := coerceFloat(m, n.off); ok {
			v.Set(n.key, raw*n.scale, p)
		}
	}
	return v
}

// DeclaredSource is tier 1: the directly-labeled nutrient fields of the
// product record.
type DeclaredSource struct {
	client FoodFactsClient
}

func NewDeclaredSource(client FoodFactsClient) *DeclaredSource {
	return &DeclaredSource{client: client}
}

func (s *DeclaredSource) Name() string { return "declared-label" }

func (s *DeclaredSource) Lookup(ctx context.Context, q Query) (*Result, error) {
	record, err := s.client.ProductByBarcode(ctx, q.Barcode)
	if err != nil {
		return nil, err
	}
	return &Result{
		Barcode: record.Code,
		Name:    record.Name,
		Brand:   record.Brand,
		Vector:  vectorFromOFF(record.Nutriments, nutrition.ProvenanceDeclared),
	}, nil
}
