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
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hairpro/repricer/configs"
	"github.com/hairpro/repricer/internal/batch"
	"github.com/hairpro/repricer/internal/faulttolerance"
)

// PluggTo pushes prices through the Plugg.To seller API. Authentication is
// an OAuth password grant; the token is cached and refreshed on 401.
type PluggTo struct {
	baseURL      string
	clientID     string
	clientSecret string
	username     string
	password     string

	client  *http.Client
	retryer *faulttolerance.Retryer
	breaker *faulttolerance.CircuitBreaker
	logger  *logrus.Logger

	mu    sync.Mutex
	token string
}

// NewPluggTo creates a Plugg.To connector from config.
func NewPluggTo(cfg configs.ConnectorConfig, logger *logrus.Logger) *PluggTo {
	return &PluggTo{
		baseURL:      strings.TrimRight(cfg.PluggToBaseURL, "/"),
		clientID:     cfg.PluggToClientID,
		clientSecret: cfg.PluggToClientSecret,
		username:     cfg.PluggToUsername,
		password:     cfg.PluggToPassword,
		client:       newHTTPClient(),
		retryer:      newRetryer("PluggTo", logger),
		breaker:      newBreaker("PluggTo", logger),
		logger:       logger,
	}
}

func (p *PluggTo) Name() string { return IntegratorPluggTo }

// UpdatePrices sends one PUT per SKU. Failing SKUs are logged and skipped so
// the rest of the batch still lands.
func (p *PluggTo) UpdatePrices(ctx context.Context, updates []batch.PriceUpdate) error {
	var failed int
	for _, u := range updates {
		err := p.breaker.Execute(ctx, func() error {
			return p.retryer.Execute(ctx, func() error {
				return p.updatePrice(ctx, u)
			})
		})
		if err != nil {
			failed++
			p.logger.WithFields(logrus.Fields{
				"sku":   u.SKU,
				"price": u.SpecialPrice.String(),
			}).Errorf("Plugg.To price update failed: %v", err)
			continue
		}
	}
	if failed > 0 {
		return fmt.Errorf("plugg.to: %d of %d price updates failed", failed, len(updates))
	}
	return nil
}

func (p *PluggTo) updatePrice(ctx context.Context, u batch.PriceUpdate) error {
	token, err := p.accessToken(ctx)
	if err != nil {
		return err
	}

	payload := []map[string]float64{{"special_price": u.SpecialPrice.InexactFloat64()}}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/skus/%s", p.baseURL, url.PathEscape(u.SKU))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		p.invalidateToken()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpStatusError{Status: resp.StatusCode, Body: string(data)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpStatusError{Status: resp.StatusCode, Body: string(data)}
	}
	return nil
}

func (p *PluggTo) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("username", p.username)
	form.Set("password", p.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &httpStatusError{Status: resp.StatusCode, Body: string(data)}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	p.token = token.AccessToken
	return p.token, nil
}

func (p *PluggTo) invalidateToken() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}
