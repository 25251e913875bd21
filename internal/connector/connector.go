// Package connector pushes approved price batches to the marketplace
// integrator APIs. One SKU failing does not abort the rest of the batch;
// failures are logged and counted, and the caller gets a single error
// summarizing how many pushes did not land.
package connector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hairpro/repricer/configs"
	"github.com/hairpro/repricer/internal/batch"
	"github.com/hairpro/repricer/internal/faulttolerance"
)

const (
	IntegratorPluggTo   = "PLUGG_TO"
	IntegratorAnymarket = "ANYMARKET"
)

// Connector is a marketplace integrator capable of receiving price updates.
type Connector interface {
	Name() string
	UpdatePrices(ctx context.Context, updates []batch.PriceUpdate) error
}

// New builds the connector selected by cfg.Integrator.
func New(cfg configs.ConnectorConfig, logger *logrus.Logger) (Connector, error) {
	switch cfg.Integrator {
	case IntegratorPluggTo:
		return NewPluggTo(cfg, logger), nil
	case IntegratorAnymarket:
		return NewAnymarket(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", cfg.Integrator)
	}
}

// httpStatusError marks integrator responses whose status code indicates a
// request that will not succeed on retry.
type httpStatusError struct {
	Status int
	Body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("integrator returned status %d: %s", e.Status, e.Body)
}

// permanentStatus reports 4xx responses, which retrying cannot fix. 401 is
// excluded: an expired token is refreshed and retried.
func permanentStatus(err error) bool {
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.Status >= 400 && se.Status < 500 && se.Status != http.StatusUnauthorized
	}
	return false
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func newRetryer(name string, logger *logrus.Logger) *faulttolerance.Retryer {
	cfg := faulttolerance.DefaultRetryConfig(name)
	cfg.Permanent = permanentStatus
	return faulttolerance.NewRetryer(cfg, logger)
}

func newBreaker(name string, logger *logrus.Logger) *faulttolerance.CircuitBreaker {
	return faulttolerance.NewCircuitBreaker(faulttolerance.CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          60 * time.Second,
		SuccessThreshold: 2,
		Name:             name,
	}, logger)
}
