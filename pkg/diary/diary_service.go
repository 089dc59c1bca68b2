package diary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"scandiary/domain"
	"scandiary/internal/utils"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
)

type (
	// DiaryService submits one finished entry to the diary server. The
	// write is two requests (create the food, then the dated entry) but
	// the contract is all-or-nothing: no diary entry exists unless Submit
	// reports success.
	//
	// Transient faults are retried with exponential backoff up to a
	// bound; auth and validation rejections are returned immediately.
	// Retries reuse the entry's correlation ID. The server is not known
	// to deduplicate by it, so a retry after a lost success response can
	// still create a duplicate entry. That risk is accepted and logged,
	// not masked.
	DiaryService interface {
		Submit(ctx context.Context, entry domain.DiaryEntry) (domain.DiaryAck, error)
	}

	diaryService struct {
		baseURL     string
		apiKey      string
		client      *http.Client
		maxAttempts int
		backoff     time.Duration
		log         *slog.Logger
	}
)

func NewDiaryService(cfg utils.Config, log *slog.Logger) DiaryService {
	return &diaryService{
		baseURL:     cfg.DiaryURL,
		apiKey:      cfg.DiaryAPIKey,
		client:      &http.Client{Timeout: 15 * time.Second},
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		log:         log,
	}
}

func (s *diaryService) Submit(ctx context.Context, entry domain.DiaryEntry) (domain.DiaryAck, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		ack, err := s.submitOnce(ctx, entry)
		if err == nil {
			return ack, nil
		}
		if !domain.IsTransient(err) {
			return domain.DiaryAck{}, err
		}

		lastErr = err
		if attempt == s.maxAttempts {
			break
		}
		delay := s.backoff << (attempt - 1)
		s.log.Warn("diary submission failed, retrying",
			"correlation_id", entry.CorrelationID, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return domain.DiaryAck{}, ctx.Err()
		}
	}
	return domain.DiaryAck{}, fmt.Errorf("diary submission exhausted %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *diaryService) submitOnce(ctx context.Context, entry domain.DiaryEntry) (domain.DiaryAck, error) {
	foodID, variantID, err := s.createFood(ctx, entry)
	if err != nil {
		return domain.DiaryAck{}, err
	}
	entryID, err := s.createEntry(ctx, entry, foodID, variantID)
	if err != nil {
		return domain.DiaryAck{}, err
	}
	return domain.DiaryAck{FoodID: foodID, VariantID: variantID, EntryID: entryID}, nil
}

// createFood stores the food with serving_size=100g, so logging N grams is
// quantity N/100.
func (s *diaryService) createFood(ctx context.Context, entry domain.DiaryEntry) (string, string, error) {
	custom := map[string]any{"correlation_id": entry.CorrelationID}
	for k, v := range entry.CustomNutrients {
		custom[k] = v
	}
	if entry.NeedsReview {
		custom["needs_review"] = true
	}

	payload := map[string]any{
		"name":                 entry.Name,
		"brand":                entry.Brand,
		"barcode":              entry.Barcode,
		"provider_type":        "openfoodfacts",
		"provider_external_id": nil,
		"shared_with_public":   false,
		"glycemic_index":       nil,
		"serving_size":         100,
		"serving_unit":         "g",
		"is_custom":            true,
		"custom_nutrients":     custom,

		"calories":            entry.Calories,
		"protein":             entry.Protein,
		"carbs":               entry.Carbs,
		"fat":                 entry.Fat,
		"saturated_fat":       entry.SaturatedFat,
		"polyunsaturated_fat": entry.PolyunsaturatedFat,
		"monounsaturated_fat": entry.MonounsaturatedFat,
		"trans_fat":           entry.TransFat,
		"cholesterol":         entry.Cholesterol,
		"sodium":              entry.Sodium,
		"potassium":           entry.Potassium,
		"dietary_fiber":       entry.DietaryFiber,
		"sugars":              entry.Sugars,
		"vitamin_a":           entry.VitaminA,
		"vitamin_c":           entry.VitaminC,
		"calcium":             entry.Calcium,
		"iron":                entry.Iron,
	}

	var resp struct {
		ID             string `json:"id"`
		DefaultVariant struct {
			ID string `json:"id"`
		} `json:"default_variant"`
	}
	if err := s.post(ctx, "create food", "/api/foods", payload, &resp); err != nil {
		return "", "", err
	}
	if resp.ID == "" || resp.DefaultVariant.ID == "" {
		return "", "", domain.ErrNoDefaultVariant
	}
	return resp.ID, resp.DefaultVariant.ID, nil
}

func (s *diaryService) createEntry(ctx context.Context, entry domain.DiaryEntry, foodID, variantID string) (string, error) {
	payload := map[string]any{
		"food_id":    foodID,
		"variant_id": variantID,
		"meal_type":  entry.MealType,
		"quantity":   entry.Quantity,
		"unit":       "serving",
		"entry_date": entry.EntryDate,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, "create diary entry", "/api/food-entries", payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (s *diaryService) post(ctx context.Context, op, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Transient(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= http.StatusInternalServerError:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return domain.Transient(op, fmt.Errorf("status %d: %s", resp.StatusCode, detail))
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return &domain.ValidationError{Op: op, Status: resp.StatusCode, Detail: string(detail)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	return nil
}
