// Package beleza scrapes product offer pages from Beleza na Web. Each
// product page embeds every seller's offer as a JSON blob in a data-sku
// attribute; the scraper extracts those blobs and publishes one raw listing
// per offer to Kafka.
package beleza

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/hairpro/repricer/configs"
	"github.com/hairpro/repricer/internal/listing"
	"github.com/hairpro/repricer/internal/scraper"
)

const (
	PollingInterval = 24 * time.Hour
	RequestTimeout  = 30 * time.Second
	MaxRetries      = 3
	RetryBackoff    = 5 * time.Second

	// The marketplace blocks default Go user agents.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Offer blobs sit in single or double quoted data-sku attributes depending
// on the page template.
var offerPattern = regexp.MustCompile(`data-sku=(?:'([^']+)'|"([^"]+)")`)

type BelezaScraper struct {
	*scraper.BaseScraper
	httpClient   *http.Client
	limiter      *rate.Limiter
	productURLs  []string
	scheduleHour int
}

func NewBelezaScraper(writer scraper.Writer, logger *slog.Logger, cfg *configs.ScraperConfig) *BelezaScraper {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}
	return &BelezaScraper{
		BaseScraper:  scraper.NewBaseScraper(writer, logger),
		httpClient:   &http.Client{Timeout: RequestTimeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		productURLs:  cfg.ProductURLs,
		scheduleHour: cfg.ScheduleHour,
	}
}

func (bs *BelezaScraper) Name() string {
	return "beleza-na-web"
}

func (bs *BelezaScraper) Run(ctx context.Context) error {
	bs.Logger.Info("Starting Beleza na Web scraper...")

	if len(bs.productURLs) == 0 {
		return fmt.Errorf("failed to run, no product URLs configured")
	}

	// Calculate time until next scheduled run
	nextRun := bs.calculateNextRun()
	waitDuration := time.Until(nextRun)

	bs.Logger.Info("Beleza na Web scheduled",
		"scheduleHour", bs.scheduleHour,
		"nextRun", nextRun.Format(time.RFC3339),
		"waitDuration", waitDuration.Round(time.Second),
	)

	// Wait until scheduled time
	select {
	case <-ctx.Done():
		bs.Logger.Info("Shutdown signal received before first run")
		return nil
	case <-time.After(waitDuration):
		if err := bs.fetchAndSend(ctx); err != nil {
			if err == context.Canceled {
				bs.Logger.Info("Fetch cancelled")
				return nil
			}
			bs.Logger.Error("Fetch failed", "error", err)
		}
	}

	// Run every 24 hours after first scheduled run
	ticker := time.NewTicker(PollingInterval)
	defer ticker.Stop()

	bs.Logger.Info("Polling started", "interval", PollingInterval)

	for {
		select {
		case <-ctx.Done():
			bs.Logger.Info("Shutdown signal received. Stopping Beleza na Web scraper...")
			return nil
		case <-ticker.C:
			bs.Logger.Info("Starting scheduled page fetch...")
			if err := bs.fetchAndSend(ctx); err != nil {
				if err == context.Canceled {
					bs.Logger.Info("Fetch cancelled")
					return nil
				}
				bs.Logger.Error("Fetch failed", "error", err)
			}
		}
	}
}

// calculateNextRun calculates the next run time based on the schedule hour
// in America/Sao_Paulo timezone.
func (bs *BelezaScraper) calculateNextRun() time.Time {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		bs.Logger.Warn("Failed to load America/Sao_Paulo timezone, using UTC", "error", err)
		saoPaulo = time.UTC
	}

	now := time.Now().In(saoPaulo)
	nextRun := time.Date(now.Year(), now.Month(), now.Day(), bs.scheduleHour, 0, 0, 0, saoPaulo)

	// If scheduled time already passed today, schedule for tomorrow
	if now.After(nextRun) {
		nextRun = nextRun.Add(24 * time.Hour)
	}

	return nextRun
}

func (bs *BelezaScraper) fetchAndSend(ctx context.Context) error {
	totalSent := 0
	for _, url := range bs.productURLs {
		if err := bs.limiter.Wait(ctx); err != nil {
			return err
		}

		page, err := bs.fetchPage(ctx, url)
		if err != nil {
			bs.Logger.Error("Failed to fetch page", "url", url, "error", err)
			continue
		}

		offers, err := ParseOffers(page)
		if err != nil {
			bs.Logger.Error("Failed to parse offers", "url", url, "error", err)
			continue
		}

		sent := bs.sendOffers(ctx, offers)
		totalSent += sent
		bs.Logger.Info("Sent offers to Kafka", "url", url, "count", sent)
	}

	bs.Logger.Info("Completed scrape", "totalSent", totalSent)
	return nil
}

func (bs *BelezaScraper) sendOffers(ctx context.Context, offers []listing.RawListing) int {
	sent := 0
	for _, offer := range offers {
		jsonData, err := json.Marshal(offer)
		if err != nil {
			bs.Logger.Error("Failed to marshal offer", "sku", offer.SKU, "error", err)
			continue
		}

		if err := bs.SendToKafka(ctx, jsonData); err != nil {
			bs.Logger.Error("Failed to send offer to Kafka", "sku", offer.SKU, "error", err)
			continue
		}

		sent++
	}
	return sent
}

func (bs *BelezaScraper) fetchPage(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			bs.Logger.Warn("Retrying page fetch", "attempt", attempt, "url", url)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(RetryBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html")

		resp, err := bs.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			continue
		}

		return body, nil
	}
	return nil, lastErr
}

// offerBlob is the JSON the marketplace embeds per seller offer.
type offerBlob struct {
	SKU      string      `json:"sku"`
	Brand    string      `json:"brand"`
	Category string      `json:"category"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Seller   struct {
		Name string `json:"name"`
	} `json:"seller"`
}

// ParseOffers extracts every seller offer embedded in a product page.
// Blobs that fail to decode are skipped; the page layout repeats some
// offers, duplicates are removed downstream during normalization.
func ParseOffers(page []byte) ([]listing.RawListing, error) {
	matches := offerPattern.FindAllStringSubmatch(string(page), -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no offer data found in page")
	}

	offers := make([]listing.RawListing, 0, len(matches))
	for _, m := range matches {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		raw = html.UnescapeString(raw)

		var blob offerBlob
		if err := json.Unmarshal([]byte(raw), &blob); err != nil {
			continue
		}
		if blob.SKU == "" {
			continue
		}

		offers = append(offers, listing.RawListing{
			SKU:        blob.SKU,
			Brand:      blob.Brand,
			Category:   blob.Category,
			Name:       blob.Name,
			Price:      blob.Price.String(),
			SellerName: blob.Seller.Name,
		})
	}

	if len(offers) == 0 {
		return nil, fmt.Errorf("no decodable offers in page")
	}
	return offers, nil
}
