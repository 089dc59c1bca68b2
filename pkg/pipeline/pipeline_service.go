package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"scandiary/domain"
	"scandiary/entities"
	"scandiary/internal/utils"
	"scandiary/internal/utils/mailing"
	"scandiary/pkg/diary"
	"scandiary/pkg/journal"
	"scandiary/pkg/mealtime"
	"scandiary/pkg/nutrition"
	"scandiary/pkg/resolver"
	"scandiary/pkg/scale"
	"scandiary/pkg/scanner"
)

// defaultServingGrams is the quantity logged when no scale reading is
// available. Foods are stored per 100g, so one serving is 100g.
const defaultServingGrams = 100.0

type (
	// PipelineService runs the whole scan lifecycle: resolve, normalize,
	// classify, weigh, submit, journal. Scans are strictly serialized; a
	// second scan (device or API) waits for the current one to finish.
	PipelineService interface {
		ProcessScan(ctx context.Context, event domain.ScanEvent) (domain.ScanResponse, error)
		Run(ctx context.Context, src scanner.BarcodeSource) error
	}

	pipelineService struct {
		resolver resolver.ResolverService
		diary    diary.DiaryService
		scale    scale.ScaleService
		journal  journal.JournalRepository // nil when journaling is disabled
		mailer   *mailing.Mailer
		windows  mealtime.Windows
		log      *slog.Logger

		mu sync.Mutex
	}
)

func NewPipelineService(
	resolverService resolver.ResolverService,
	diaryService diary.DiaryService,
	scaleService scale.ScaleService,
	journalRepository journal.JournalRepository,
	mailer *mailing.Mailer,
	windows mealtime.Windows,
	log *slog.Logger,
) PipelineService {
	return &pipelineService{
		resolver: resolverService,
		diary:    diaryService,
		scale:    scaleService,
		journal:  journalRepository,
		mailer:   mailer,
		windows:  windows,
		log:      log,
	}
}

// Run pulls barcodes from the source until it is exhausted or the context
// is canceled. An auth rejection stops the loop: scanning without a valid
// credential only piles up lost entries.
func (s *pipelineService) Run(ctx context.Context, src scanner.BarcodeSource) error {
	for {
		barcode, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		event := domain.ScanEvent{Barcode: barcode, CapturedAt: time.Now()}
		if _, err := s.ProcessScan(ctx, event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// ProcessScan handles one scan end to end. The returned error is reserved
// for conditions that must stop the agent (cancellation, rejected
// credential); per-scan failures are reported in the response outcome and
// never abort the loop.
func (s *pipelineService) ProcessScan(ctx context.Context, event domain.ScanEvent) (domain.ScanResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Barcode == "" {
		return domain.ScanResponse{}, domain.ErrEmptyBarcode
	}
	s.log.Info("scan received", "barcode", event.Barcode)

	res, err := s.resolver.Resolve(ctx, event.Barcode)
	if err != nil {
		return domain.ScanResponse{}, err
	}

	name := utils.NormalizeCase(res.Name)
	if name == "" {
		name = "Unknown Product"
	}
	brand := utils.NormalizeCase(res.Brand)
	if res.NeedsReview {
		s.log.Warn("nutrition incomplete, flagged for review",
			"barcode", event.Barcode, "tier", res.Tier)
		name = domain.ReviewMarker + " " + name
	} else {
		s.log.Info("product resolved",
			"name", name, "brand", brand, "source", res.SourceName, "tier", res.Tier)
	}

	mealType := event.MealOverride
	if mealType == "" {
		mealType = string(mealtime.Classify(event.CapturedAt, s.windows))
	}

	weight := s.weighScan(ctx, event)
	quantity := round2(weight / 100)

	entry := s.buildEntry(res, name, brand, mealType, quantity, event.CapturedAt)
	s.log.Info("per 100g",
		"kcal", res.Vector.Value(nutrition.KeyCalories),
		"protein", res.Vector.Value(nutrition.KeyProtein),
		"carbs", res.Vector.Value(nutrition.KeyCarbs),
		"fat", res.Vector.Value(nutrition.KeyFat))

	outcome, reason, fatal := s.submit(ctx, entry)

	response := domain.ScanResponse{
		Barcode:     event.Barcode,
		Name:        name,
		Brand:       brand,
		MealType:    mealType,
		SourceTier:  res.Tier,
		NeedsReview: res.NeedsReview,
		Outcome:     outcome,
		Reason:      reason,
		Quantity:    quantity,
		Calories:    res.Vector.Value(nutrition.KeyCalories),
		CreatedAt:   event.CapturedAt,
	}
	s.journalScan(ctx, entry, response, weight)

	if fatal != nil {
		return response, fatal
	}
	return response, nil
}

// submit maps the diary service's error taxonomy onto the three ways a
// scan can end. Only an auth rejection comes back as a fatal error.
func (s *pipelineService) submit(ctx context.Context, entry domain.DiaryEntry) (outcome, reason string, fatal error) {
	ack, err := s.diary.Submit(ctx, entry)
	if err == nil {
		outcome = domain.OutcomeLogged
		if entry.NeedsReview {
			outcome = domain.OutcomeLoggedReview
		}
		s.log.Info("diary entry created",
			"meal", entry.MealType, "quantity", entry.Quantity,
			"kcal", round2(entry.Calories*entry.Quantity), "entry_id", ack.EntryID)
		return outcome, "", nil
	}

	switch {
	case domain.IsAuthError(err):
		s.log.Error("diary credential rejected, stopping", "error", err)
		s.alert("diary credential rejected",
			fmt.Sprintf("The diary service rejected the agent's credential:\n\n%v\n\nScanning is stopped until the credential is fixed.", err))
		return domain.OutcomeFailed, err.Error(), err
	case domain.IsValidationError(err):
		s.log.Error("diary entry rejected by schema, skipping scan", "error", err)
		return domain.OutcomeFailed, err.Error(), nil
	default:
		s.log.Error("diary submission failed", "error", err)
		s.alert("diary submission failed",
			fmt.Sprintf("A scan could not be logged after retries:\n\nbarcode: %s\nproduct: %s\n\n%v", entry.Barcode, entry.Name, err))
		return domain.OutcomeFailed, err.Error(), nil
	}
}

// weighScan prefers a weight delivered with the event, then the scale
// collaborator, then the one-serving default. Scale trouble never blocks a
// scan.
func (s *pipelineService) weighScan(ctx context.Context, event domain.ScanEvent) float64 {
	if event.WeightGrams != nil && *event.WeightGrams > 0 {
		return *event.WeightGrams
	}
	if s.scale == nil || !s.scale.Enabled() {
		return defaultServingGrams
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	weight, err := s.scale.Read(readCtx)
	if err != nil {
		s.log.Warn("scale read failed, logging default serving", "error", err)
		return defaultServingGrams
	}
	return weight
}

func (s *pipelineService) buildEntry(res resolver.Resolution, name, brand, mealType string, quantity float64, capturedAt time.Time) domain.DiaryEntry {
	v := res.Vector
	entry := domain.DiaryEntry{
		CorrelationID: uuid.New().String(),
		Name:          name,
		Brand:         brand,
		Barcode:       res.Barcode,
		MealType:      mealType,
		Quantity:      quantity,
		EntryDate:     capturedAt.Format("2006-01-02"),
		NeedsReview:   res.NeedsReview,

		Calories:           round2(v.Value(nutrition.KeyCalories)),
		Protein:            round2(v.Value(nutrition.KeyProtein)),
		Carbs:              round2(v.Value(nutrition.KeyCarbs)),
		Fat:                round2(v.Value(nutrition.KeyFat)),
		SaturatedFat:       round2(v.Value(nutrition.KeySaturatedFat)),
		PolyunsaturatedFat: round2(v.Value(nutrition.KeyPolyunsaturatedFat)),
		MonounsaturatedFat: round2(v.Value(nutrition.KeyMonounsaturatedFat)),
		TransFat:           round2(v.Value(nutrition.KeyTransFat)),
		Cholesterol:        round2(v.Value(nutrition.KeyCholesterol)),
		Sodium:             round2(v.Value(nutrition.KeySodium)),
		Potassium:          round2(v.Value(nutrition.KeyPotassium)),
		DietaryFiber:       round2(v.Value(nutrition.KeyDietaryFiber)),
		Sugars:             round2(v.Value(nutrition.KeySugars)),
		VitaminA:           round2(v.Value(nutrition.KeyVitaminA)),
		VitaminC:           round2(v.Value(nutrition.KeyVitaminC)),
		Calcium:            round2(v.Value(nutrition.KeyCalcium)),
		Iron:               round2(v.Value(nutrition.KeyIron)),
	}

	custom := make(map[string]any)
	for _, k := range v.Keys() {
		if _, fixed := fixedEntryKeys[k]; fixed {
			continue
		}
		custom[string(k)] = round2(v.Value(k))
	}
	if res.Tier > 0 {
		custom["source_tier"] = res.Tier
	}
	entry.CustomNutrients = custom
	return entry
}

// fixedEntryKeys are the nutrients the diary schema models as first-class
// fields; everything else travels in the custom-nutrients bag.
var fixedEntryKeys = map[nutrition.Key]struct{}{
	nutrition.KeyCalories: {}, nutrition.KeyProtein: {}, nutrition.KeyCarbs: {},
	nutrition.KeyFat: {}, nutrition.KeySaturatedFat: {}, nutrition.KeyPolyunsaturatedFat: {},
	nutrition.KeyMonounsaturatedFat: {}, nutrition.KeyTransFat: {}, nutrition.KeyCholesterol: {},
	nutrition.KeySodium: {}, nutrition.KeyPotassium: {}, nutrition.KeyDietaryFiber: {},
	nutrition.KeySugars: {}, nutrition.KeyVitaminA: {}, nutrition.KeyVitaminC: {},
	nutrition.KeyCalcium: {}, nutrition.KeyIron: {},
}

func (s *pipelineService) journalScan(ctx context.Context, entry domain.DiaryEntry, response domain.ScanResponse, weight float64) {
	if s.journal == nil {
		return
	}
	correlationID, _ := uuid.Parse(entry.CorrelationID)
	record := &entities.ScanRecord{
		ID:            uuid.New(),
		Barcode:       response.Barcode,
		ProductName:   response.Name,
		Brand:         response.Brand,
		MealType:      response.MealType,
		SourceTier:    response.SourceTier,
		NeedsReview:   response.NeedsReview,
		Outcome:       response.Outcome,
		FailureReason: response.Reason,
		QuantityGrams: weight,
		Calories:      entry.Calories,
		Protein:       entry.Protein,
		Carbs:         entry.Carbs,
		Fat:           entry.Fat,
		CorrelationID: correlationID,
	}
	if err := s.journal.RecordScan(ctx, record); err != nil {
		s.log.Error(domain.MessageFailedJournalWrite, "barcode", response.Barcode, "error", err)
	}
}

func (s *pipelineService) alert(subject, body string) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}
	if err := s.mailer.Send("scandiary: "+subject, body); err != nil {
		s.log.Error("failed to send operator alert", "error", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
