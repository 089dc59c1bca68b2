package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"scandiary/domain"
	"scandiary/internal/utils"
)

type (
	// ProductRecord is the product-database payload behind tiers 1 and 2:
	// one record carrying both the declared label nutrients and the
	// ingredient-derived estimates.
	ProductRecord struct {
		Code                string
		Name                string
		Brand               string
		Nutriments          map[string]any
		NutrimentsEstimated map[string]any
	}

	// FoodFactsClient looks up barcodes through the diary server's
	// OpenFoodFacts proxy.
	FoodFactsClient interface {
		ProductByBarcode(ctx context.Context, barcode string) (*ProductRecord, error)
	}

	foodFactsClient struct {
		baseURL string
		apiKey  string
		client  *http.Client

		// One-record memo so the declared and estimated tiers of a single
		// scan share a fetch. Scans are strictly serialized, so no lock.
		lastBarcode string
		lastRecord  *ProductRecord
		lastAbsent  bool
	}
)

func NewFoodFactsClient(cfg utils.Config) FoodFactsClient {
	return &foodFactsClient{
		baseURL: cfg.DiaryURL,
		apiKey:  cfg.DiaryAPIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *foodFactsClient) ProductByBarcode(ctx context.Context, barcode string) (*ProductRecord, error) {
	if c.lastBarcode == barcode {
		if c.lastAbsent {
			return nil, domain.ErrAbsent
		}
		if c.lastRecord != nil {
			return c.lastRecord, nil
		}
	}

	u := fmt.Sprintf("%s/api/foods/openfoodfacts/barcode/%s", c.baseURL, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create barcode lookup request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.Transient("barcode lookup", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &domain.AuthError{Op: "barcode lookup", Status: resp.StatusCode}
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, domain.Transient("barcode lookup", fmt.Errorf("status %d: %s", resp.StatusCode, body))
	case resp.StatusCode != http.StatusOK:
		c.memoAbsent(barcode)
		return nil, domain.ErrAbsent
	}

	var payload struct {
		Status  int `json:"status"`
		Product struct {
			Code                string         `json:"code"`
			ProductName         string         `json:"product_name"`
			Brands              string         `json:"brands"`
			Nutriments          map[string]any `json:"nutriments"`
			NutrimentsEstimated map[string]any `json:"nutriments_estimated"`
		} `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.Transient("barcode lookup", fmt.Errorf("failed to parse response: %w", err))
	}
	if payload.Status != 1 {
		c.memoAbsent(barcode)
		return nil, domain.ErrAbsent
	}

	record := &ProductRecord{
		Code:                payload.Product.Code,
		Name:                payload.Product.ProductName,
		Brand:               payload.Product.Brands,
		Nutriments:          payload.Product.Nutriments,
		NutrimentsEstimated: payload.Product.NutrimentsEstimated,
	}
	c.lastBarcode = barcode
	c.lastRecord = record
	c.lastAbsent = false
	return record, nil
}

func (c *foodFactsClient) memoAbsent(barcode string) {
	c.lastBarcode = barcode
	c.lastRecord = nil
	c.lastAbsent = true
}
