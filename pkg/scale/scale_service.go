package scale

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"scandiary/internal/utils"
)

type (
	// ScaleService reads the current weight from the kitchen scale sensor.
	// The scale is optional: every failure mode (unconfigured, timeout,
	// zero reading) just means the scan proceeds with the default
	// quantity.
	ScaleService interface {
		Enabled() bool
		// Read returns the current weight in grams. A zero or negative
		// reading is reported as an error so callers fall back cleanly.
		Read(ctx context.Context) (float64, error)
	}

	scaleService struct {
		url    string
		client *http.Client
	}
)

func NewScaleService(cfg utils.Config) ScaleService {
	return &scaleService{
		url:    cfg.ScaleURL,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *scaleService) Enabled() bool { return s.url != "" }

func (s *scaleService) Read(ctx context.Context) (float64, error) {
	if !s.Enabled() {
		return 0, fmt.Errorf("scale not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create scale request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to read scale: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scale returned status %d", resp.StatusCode)
	}

	var payload struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to parse scale response: %w", err)
	}
	if payload.Value <= 0 {
		return 0, fmt.Errorf("scale reads %.0fg", payload.Value)
	}
	return payload.Value, nil
}
