package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hairpro/repricer/configs"
	"github.com/hairpro/repricer/internal/batch"
	"github.com/hairpro/repricer/internal/faulttolerance"
)

// Anymarket pushes prices through the Anymarket hub. Every SKU is published
// to marketplaces as an "ad"; the price update targets the ad belonging to
// the configured marketplace, looked up by the SKU's partner ID.
type Anymarket struct {
	baseURL     string
	token       string
	marketplace string

	client  *http.Client
	retryer *faulttolerance.Retryer
	breaker *faulttolerance.CircuitBreaker
	logger  *logrus.Logger
}

// NewAnymarket creates an Anymarket connector from config.
func NewAnymarket(cfg configs.ConnectorConfig, logger *logrus.Logger) *Anymarket {
	return &Anymarket{
		baseURL:     strings.TrimRight(cfg.AnymarketBaseURL, "/"),
		token:       cfg.AnymarketToken,
		marketplace: cfg.Marketplace,
		client:      newHTTPClient(),
		retryer:     newRetryer("Anymarket", logger),
		breaker:     newBreaker("Anymarket", logger),
		logger:      logger,
	}
}

func (a *Anymarket) Name() string { return IntegratorAnymarket }

// ad is one SKU publication on one marketplace.
type ad struct {
	ID          int64   `json:"id"`
	MarketPlace string  `json:"marketPlace"`
	Price       float64 `json:"price"`
}

// UpdatePrices resolves each SKU's ad on the configured marketplace and
// patches its price. Failing SKUs are logged and skipped.
func (a *Anymarket) UpdatePrices(ctx context.Context, updates []batch.PriceUpdate) error {
	var failed int
	for _, u := range updates {
		err := a.breaker.Execute(ctx, func() error {
			return a.retryer.Execute(ctx, func() error {
				return a.updatePrice(ctx, u)
			})
		})
		if err != nil {
			failed++
			a.logger.WithFields(logrus.Fields{
				"sku":         u.SKU,
				"price":       u.SpecialPrice.String(),
				"marketplace": a.marketplace,
			}).Errorf("Anymarket price update failed: %v", err)
			continue
		}
	}
	if failed > 0 {
		return fmt.Errorf("anymarket: %d of %d price updates failed", failed, len(updates))
	}
	return nil
}

func (a *Anymarket) updatePrice(ctx context.Context, u batch.PriceUpdate) error {
	adID, err := a.lookupAd(ctx, u.SKU)
	if err != nil {
		return err
	}

	price := u.SpecialPrice.InexactFloat64()
	payload := []map[string]any{{
		"id":            adID,
		"price":         price,
		"discountPrice": price,
	}}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		a.baseURL+"/v2/skus/marketplaces/prices", bytes.NewReader(body))
	if err != nil {
		return err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpStatusError{Status: resp.StatusCode, Body: string(data)}
	}
	return nil
}

// lookupAd returns the ad ID for the SKU on the configured marketplace.
func (a *Anymarket) lookupAd(ctx context.Context, sku string) (int64, error) {
	endpoint := fmt.Sprintf("%s/v2/skus/marketplaces?partnerID=%s", a.baseURL, url.QueryEscape(sku))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &httpStatusError{Status: resp.StatusCode, Body: string(data)}
	}

	var ads []ad
	if err := json.NewDecoder(resp.Body).Decode(&ads); err != nil {
		return 0, fmt.Errorf("decoding ads for sku %s: %w", sku, err)
	}
	for _, candidate := range ads {
		if candidate.MarketPlace == a.marketplace {
			return candidate.ID, nil
		}
	}
	return 0, &httpStatusError{Status: http.StatusNotFound,
		Body: fmt.Sprintf("sku %s has no ad on %s", sku, a.marketplace)}
}

func (a *Anymarket) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("gumgaToken", a.token)
}
