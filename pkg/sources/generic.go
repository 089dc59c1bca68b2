package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scandiary/domain"
	"scandiary/internal/utils"
	"scandiary/pkg/nutrition"
)

// usdaNutrients maps FoodData Central nutrient IDs into the canonical
// vector.
var usdaNutrients = map[int]nutrition.Key{
	1008: nutrition.KeyCalories,
	1003: nutrition.KeyProtein,
	1005: nutrition.KeyCarbs,
	1004: nutrition.KeyFat,
	1258: nutrition.KeySaturatedFat,
	1293: nutrition.KeyPolyunsaturatedFat,
	1292: nutrition.KeyMonounsaturatedFat,
	1257: nutrition.KeyTransFat,
	1253: nutrition.KeyCholesterol,
	1093: nutrition.KeySodium,
	1092: nutrition.KeyPotassium,
	1079: nutrition.KeyDietaryFiber,
	2000: nutrition.KeySugars,
	1106: nutrition.KeyVitaminA,
	1162: nutrition.KeyVitaminC,
	1087: nutrition.KeyCalcium,
	1089: nutrition.KeyIron,
}

type (
	// GenericSource is tier 3: the generic food database behind the diary
	// server's provider integration. Three sub-strategies in order: exact
	// barcode match, brand+name search, name-only search. The first
	// strategy returning any record wins.
	GenericSource struct {
		baseURL    string
		apiKey     string
		providerID string
		client     *http.Client
	}

	usdaFood struct {
		FdcID       int64  `json:"fdcId"`
		Description string `json:"description"`
		BrandOwner  string `json:"brandOwner"`
		Nutrients   []struct {
			NutrientID int     `json:"nutrientId"`
			Value      float64 `json:"value"`
			UnitName   string  `json:"unitName"`
		} `json:"foodNutrients"`
	}
)

func NewGenericSource(cfg utils.Config) *GenericSource {
	return &GenericSource{
		baseURL:    cfg.DiaryURL,
		apiKey:     cfg.DiaryAPIKey,
		providerID: cfg.USDAProviderID,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *GenericSource) Name() string { return "generic-db" }

func (s *GenericSource) Lookup(ctx context.Context, q Query) (*Result, error) {
	if s.providerID == "" {
		return nil, domain.ErrAbsent
	}

	for _, query := range s.queries(q) {
		food, err := s.search(ctx, query)
		if err != nil {
			return nil, err
		}
		if food == nil {
			continue
		}
		return s.toResult(q, food), nil
	}
	return nil, domain.ErrAbsent
}

// queries builds the ordered sub-strategy queries, skipping the text
// searches when no identity hints exist.
func (s *GenericSource) queries(q Query) []string {
	queries := []string{q.Barcode}
	name := strings.TrimSpace(q.Name)
	brand := strings.TrimSpace(q.Brand)
	if brand != "" && name != "" {
		queries = append(queries, brand+" "+name)
	}
	if name != "" {
		queries = append(queries, name)
	}
	return queries
}

func (s *GenericSource) search(ctx context.Context, query string) (*usdaFood, error) {
	u := fmt.Sprintf("%s/api/food-integration/usda/search?query=%s", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create food database request: %w", err)
	}
	req.Header.Set("X-API-Key", s.apiKey)
	req.Header.Set("x-provider-id", s.providerID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.Transient("food database search", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &domain.AuthError{Op: "food database search", Status: resp.StatusCode}
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, domain.Transient("food database search", fmt.Errorf("status %d: %s", resp.StatusCode, body))
	case resp.StatusCode != http.StatusOK:
		return nil, nil
	}

	var payload struct {
		Foods []usdaFood `json:"foods"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.Transient("food database search", fmt.Errorf("failed to parse response: %w", err))
	}
	if len(payload.Foods) == 0 {
		return nil, nil
	}
	return &payload.Foods[0], nil
}

func (s *GenericSource) toResult(q Query, food *usdaFood) *Result {
	v := nutrition.NewVector()
	for _, n := range food.Nutrients {
		key, ok := usdaNutrients[n.NutrientID]
		if !ok {
			continue
		}
		if value, ok := convertUSDAUnit(n.Value, n.UnitName, key); ok {
			v.Set(key, value, nutrition.ProvenanceExternal)
		}
	}

	// Keep the identity an earlier tier supplied; the database record
	// fills in only what is still unknown.
	name, brand := q.Name, q.Brand
	if name == "" {
		name = food.Description
	}
	if brand == "" {
		brand = food.BrandOwner
	}
	return &Result{Barcode: q.Barcode, Name: name, Brand: brand, Vector: v}
}

// convertUSDAUnit brings a reported value into the key's canonical unit.
// Values in units with no clean conversion (IU) are dropped rather than
// stored wrong.
func convertUSDAUnit(value float64, unitName string, key nutrition.Key) (float64, bool) {
	canonical := nutrition.CanonicalUnit(key)
	switch strings.ToUpper(unitName) {
	case "KCAL", "":
		return value, true
	case "G":
		if canonical == nutrition.UnitMilligram {
			return value * 1000, true
		}
		return value, true
	case "MG":
		if canonical == nutrition.UnitGram {
			return value / 1000, true
		}
		return value, true
	case "UG", "MCG":
		if canonical == nutrition.UnitMilligram {
			return value / 1000, true
		}
		return value / 1e6, true
	default:
		return 0, false
	}
}
