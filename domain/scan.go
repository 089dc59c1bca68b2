package domain

import (
	"errors"
	"time"
)

const (
	OutcomeLogged       = "logged"
	OutcomeLoggedReview = "logged_review"
	OutcomeFailed       = "failed"
)

var (
	MessageSuccessManualScan  = "scan processed"
	MessageSuccessGetScans    = "scans retrieved successfully"
	MessageSuccessGetReview   = "pending-review scans retrieved successfully"
	MessageFailedManualScan   = "failed to process scan"
	MessageFailedGetScans     = "failed to retrieve scans"
	MessageFailedJournalWrite = "failed to journal scan"

	ErrEmptyBarcode = errors.New("empty barcode")
)

type (
	// ScanEvent is one barcode capture. Ephemeral: consumed synchronously
	// by the pipeline, never stored as-is.
	ScanEvent struct {
		Barcode    string
		CapturedAt time.Time
		// WeightGrams carries an external scale reading when one arrived
		// with the scan. Nil means "not weighed"; the pipeline may still
		// ask the scale collaborator.
		WeightGrams *float64
		// MealOverride skips time-of-day classification when set.
		MealOverride string
	}

	ManualScanRequest struct {
		Barcode     string  `json:"barcode" validate:"required,numeric,min=4,max=14"`
		MealType    string  `json:"meal_type" validate:"omitempty,oneof=Breakfast Lunch Dinner Snack"`
		WeightGrams float64 `json:"weight_grams" validate:"omitempty,gt=0"`
	}

	ScanResponse struct {
		Barcode     string    `json:"barcode"`
		Name        string    `json:"name"`
		Brand       string    `json:"brand,omitempty"`
		MealType    string    `json:"meal_type"`
		SourceTier  int       `json:"source_tier"`
		NeedsReview bool      `json:"needs_review"`
		Outcome     string    `json:"outcome"`
		Reason      string    `json:"reason,omitempty"`
		Quantity    float64   `json:"quantity"`
		Calories    float64   `json:"calories"`
		CreatedAt   time.Time `json:"created_at"`
	}
)
