package domain

import "errors"

// ReviewMarker is prefixed to the product name when no source supplied any
// usable macro data, so the entry is easy to spot in the diary UI.
const ReviewMarker = "[REVIEW]"

var (
	MessageFailedCreateFood  = "failed to create food"
	MessageFailedCreateEntry = "failed to create diary entry"

	ErrNoDefaultVariant = errors.New("food has no default variant")
)

type (
	// DiaryEntry is the one artifact of a scan that persists. Core macros
	// map to the diary service's fixed per-100g fields; everything else
	// rides in the open CustomNutrients bag. Built once per scan, never
	// mutated after submission.
	DiaryEntry struct {
		// CorrelationID is reused across retries of the same scan. The
		// diary service is not known to deduplicate by it; see the
		// duplicate-entry note in pkg/diary.
		CorrelationID string

		Name     string
		Brand    string
		Barcode  string
		MealType string

		// Quantity is in servings of 100 g, so a weighed scan of N grams
		// logs quantity N/100.
		Quantity  float64
		EntryDate string

		Calories           float64
		Protein            float64
		Carbs              float64
		Fat                float64
		SaturatedFat       float64
		PolyunsaturatedFat float64
		MonounsaturatedFat float64
		TransFat           float64
		Cholesterol        float64
		Sodium             float64
		Potassium          float64
		DietaryFiber       float64
		Sugars             float64
		VitaminA           float64
		VitaminC           float64
		Calcium            float64
		Iron               float64

		CustomNutrients map[string]any
		NeedsReview     bool
	}

	// DiaryAck reports the identifiers the diary service assigned.
	DiaryAck struct {
		FoodID    string
		VariantID string
		EntryID   string
	}
)
