package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"scandiary/domain"
	"scandiary/internal/api/presenters"
	"scandiary/pkg/journal"
	"scandiary/pkg/pipeline"
)

type (
	// ScanHandler is the local operator surface: check on the agent,
	// inspect recent scans, and inject a barcode without the physical
	// scanner.
	ScanHandler interface {
		Health(c *fiber.Ctx) error
		ManualScan(c *fiber.Ctx) error
		RecentScans(c *fiber.Ctx) error
		PendingReview(c *fiber.Ctx) error
	}

	scanHandler struct {
		pipelineService pipeline.PipelineService
		journal         journal.JournalRepository
		validator       *validator.Validate
		startedAt       time.Time
	}
)

func NewScanHandler(pipelineService pipeline.PipelineService, journalRepository journal.JournalRepository, validator *validator.Validate) ScanHandler {
	return &scanHandler{
		pipelineService: pipelineService,
		journal:         journalRepository,
		validator:       validator,
		startedAt:       time.Now(),
	}
}

func (h *scanHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"uptime_seconds":  int(time.Since(h.startedAt).Seconds()),
		"journal_enabled": h.journal != nil,
	})
}

func (h *scanHandler) ManualScan(c *fiber.Ctx) error {
	req := new(domain.ManualScanRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedManualScan, err)
	}

	event := domain.ScanEvent{
		Barcode:      req.Barcode,
		CapturedAt:   time.Now(),
		MealOverride: req.MealType,
	}
	if req.WeightGrams > 0 {
		event.WeightGrams = &req.WeightGrams
	}

	res, err := h.pipelineService.ProcessScan(c.Context(), event)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadGateway, domain.MessageFailedManualScan, err)
	}
	if res.Outcome == domain.OutcomeFailed {
		return presenters.ErrorResponse(c, fiber.StatusBadGateway, res.Reason, nil)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessManualScan)
}

func (h *scanHandler) RecentScans(c *fiber.Ctx) error {
	if h.journal == nil {
		return presenters.ErrorResponse(c, fiber.StatusNotImplemented, domain.MessageFailedGetScans, nil)
	}
	limit := c.QueryInt("limit", 50)

	records, err := h.journal.RecentScans(c.Context(), limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetScans, err)
	}
	return presenters.SuccessResponse(c, records, fiber.StatusOK, domain.MessageSuccessGetScans)
}

func (h *scanHandler) PendingReview(c *fiber.Ctx) error {
	if h.journal == nil {
		return presenters.ErrorResponse(c, fiber.StatusNotImplemented, domain.MessageFailedGetScans, nil)
	}

	records, err := h.journal.PendingReview(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetScans, err)
	}
	return presenters.SuccessResponse(c, records, fiber.StatusOK, domain.MessageSuccessGetReview)
}
