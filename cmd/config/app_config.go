package config

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"scandiary/internal/api/handlers"
	"scandiary/internal/api/routes"
	"scandiary/internal/utils"
	"scandiary/internal/utils/mailing"
	"scandiary/pkg/diary"
	"scandiary/pkg/journal"
	"scandiary/pkg/mealtime"
	"scandiary/pkg/pipeline"
	"scandiary/pkg/resolver"
	"scandiary/pkg/scale"
	"scandiary/pkg/sources"
)

// NewApp wires the whole agent: the three nutrition tiers, the resolution
// pipeline, and the local status API. db may be nil when journaling is
// disabled.
func NewApp(cfg utils.Config, db *gorm.DB, log *slog.Logger) (*fiber.App, pipeline.PipelineService, error) {
	utils.InitValidator()
	validator := utils.Validate

	windows, err := mealtime.NewWindows(cfg.BreakfastWindow, cfg.LunchWindow, cfg.DinnerWindow)
	if err != nil {
		return nil, nil, err
	}

	// Nutrition tiers, strict priority order
	foodFacts := sources.NewFoodFactsClient(cfg)
	resolverService := resolver.NewResolverService(log,
		sources.NewDeclaredSource(foodFacts),
		sources.NewEstimatedSource(foodFacts),
		sources.NewGenericSource(cfg),
	)

	var journalRepository journal.JournalRepository
	if db != nil {
		journalRepository = journal.NewJournalRepository(db)
	}

	diaryService := diary.NewDiaryService(cfg, log)
	scaleService := scale.NewScaleService(cfg)
	mailer := mailing.NewMailer(cfg)

	pipelineService := pipeline.NewPipelineService(
		resolverService,
		diaryService,
		scaleService,
		journalRepository,
		mailer,
		windows,
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:               "scandiary",
		DisableStartupMessage: true,
	})
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
	}))

	scanHandler := handlers.NewScanHandler(pipelineService, journalRepository, validator)
	routesConfig := routes.Config{
		App:         app,
		ScanHandler: scanHandler,
	}
	routesConfig.Setup()

	return app, pipelineService, nil
}
