package diary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandiary/domain"
)

func testService(baseURL string) *diaryService {
	return &diaryService{
		baseURL:     baseURL,
		apiKey:      "test-key",
		client:      &http.Client{Timeout: 5 * time.Second},
		maxAttempts: 3,
		backoff:     time.Millisecond,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testEntry() domain.DiaryEntry {
	return domain.DiaryEntry{
		CorrelationID: "3f1c9a1e-1111-2222-3333-444455556666",
		Barcode:       "0123456789012",
		Name:          "Almond Milk",
		Brand:         "Acme",
		MealType:      "Breakfast",
		Quantity:      1,
		EntryDate:     "2026-08-29",
		Calories:      46,
		Carbs:         3,
	}
}

func TestSubmitRecoversFromTransientFaults(t *testing.T) {
	var foodCalls, entryCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/foods":
			// First two attempts fail server-side, third succeeds.
			if foodCalls.Add(1) <= 2 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"id":"food-1","default_variant":{"id":"var-1"}}`)
		case "/api/food-entries":
			entryCalls.Add(1)
			fmt.Fprint(w, `{"id":"entry-1"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ack, err := testService(srv.URL).Submit(context.Background(), testEntry())
	require.NoError(t, err)

	assert.Equal(t, "food-1", ack.FoodID)
	assert.Equal(t, "var-1", ack.VariantID)
	assert.Equal(t, "entry-1", ack.EntryID)
	assert.Equal(t, int32(3), foodCalls.Load())
	// Exactly one diary entry despite the retries.
	assert.Equal(t, int32(1), entryCalls.Load())
}

func TestSubmitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testService(srv.URL).Submit(context.Background(), testEntry())
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmitAuthFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testService(srv.URL).Submit(context.Background(), testEntry())
	require.Error(t, err)
	assert.True(t, domain.IsAuthError(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmitRejectionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error":"quantity must be positive"}`)
	}))
	defer srv.Close()

	_, err := testService(srv.URL).Submit(context.Background(), testEntry())
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmitRequiresDefaultVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":"food-1"}`)
	}))
	defer srv.Close()

	_, err := testService(srv.URL).Submit(context.Background(), testEntry())
	assert.ErrorIs(t, err, domain.ErrNoDefaultVariant)
}

func TestCreateFoodPayload(t *testing.T) {
	var foodPayload, entryPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		switch r.URL.Path {
		case "/api/foods":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&foodPayload))
			fmt.Fprint(w, `{"id":"food-1","default_variant":{"id":"var-1"}}`)
		case "/api/food-entries":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&entryPayload))
			fmt.Fprint(w, `{"id":"entry-1"}`)
		}
	}))
	defer srv.Close()

	entry := testEntry()
	entry.Quantity = 1.5
	entry.NeedsReview = true
	entry.CustomNutrients = map[string]any{"net_carbs": 3.0}

	_, err := testService(srv.URL).Submit(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, float64(100), foodPayload["serving_size"])
	assert.Equal(t, true, foodPayload["is_custom"])
	custom, ok := foodPayload["custom_nutrients"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, entry.CorrelationID, custom["correlation_id"])
	assert.Equal(t, true, custom["needs_review"])
	assert.Equal(t, 3.0, custom["net_carbs"])

	assert.Equal(t, "food-1", entryPayload["food_id"])
	assert.Equal(t, "var-1", entryPayload["variant_id"])
	assert.Equal(t, "Breakfast", entryPayload["meal_type"])
	assert.Equal(t, 1.5, entryPayload["quantity"])
	assert.Equal(t, "serving", entryPayload["unit"])
	assert.Equal(t, "2026-08-29", entryPayload["entry_date"])
}

func TestSubmitHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := testService(srv.URL)
	svc.backoff = time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Submit(ctx, testEntry())
	assert.ErrorIs(t, err, context.Canceled)
}
