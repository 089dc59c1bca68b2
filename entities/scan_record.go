package entities

import (
	"github.com/google/uuid"
)

// ScanRecord journals one processed scan: what was scanned, which tier
// won, and how submission ended. Written once per scan, never updated.
type ScanRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Barcode       string    `gorm:"index" json:"barcode"`
	ProductName   string    `json:"product_name"`
	Brand         string    `json:"brand"`
	MealType      string    `json:"meal_type"`
	SourceTier    int       `json:"source_tier"` // 1..3, 0 when no source had data
	NeedsReview   bool      `gorm:"index" json:"needs_review"`
	Outcome       string    `json:"outcome"` // "logged", "logged_review", "failed"
	FailureReason string    `json:"failure_reason,omitempty"`
	QuantityGrams float64   `json:"quantity_grams"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbs         float64   `json:"carbs"`
	Fat           float64   `json:"fat"`
	CorrelationID uuid.UUID `gorm:"type:uuid" json:"correlation_id"`

	Timestamp
}
