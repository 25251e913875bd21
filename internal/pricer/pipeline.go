// Package pricer runs the pricing pipeline: normalize scraped listings,
// reconcile against competitors, join costs, converge margins and push the
// approved batch to the marketplace integrator.
package pricer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hairpro/repricer/internal/batch"
	"github.com/hairpro/repricer/internal/connector"
	"github.com/hairpro/repricer/internal/costs"
	"github.com/hairpro/repricer/internal/ebitda"
	"github.com/hairpro/repricer/internal/ledger"
	"github.com/hairpro/repricer/internal/listing"
	"github.com/hairpro/repricer/internal/reconcile"
	"github.com/hairpro/repricer/internal/storage"
	"github.com/hairpro/repricer/internal/storage/models"
	"github.com/hairpro/repricer/utils"
)

// Result summarizes one pipeline run.
type Result struct {
	RunID string

	// Listings is the normalized listing count, Compared the SKUs we list
	// ourselves, Priced the rows that survived cost join and convergence,
	// Pushed the updates handed to the integrator.
	Listings int
	Compared int
	Priced   int
	Pushed   int
}

// Pipeline wires the pricing stages together. Every run gets a fresh run ID
// so recommendation rows from the same batch can be queried together.
type Pipeline struct {
	normCfg    listing.NormalizerConfig
	reconciler *reconcile.Reconciler
	joiner     *costs.Joiner
	engine     *ebitda.Engine
	ledger     ledger.Ledger
	store      storage.Storage
	conn       connector.Connector
	logger     *slog.Logger
}

// NewPipeline creates a Pipeline from its stages.
func NewPipeline(
	normCfg listing.NormalizerConfig,
	reconciler *reconcile.Reconciler,
	joiner *costs.Joiner,
	engine *ebitda.Engine,
	costLedger ledger.Ledger,
	store storage.Storage,
	conn connector.Connector,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		normCfg:    normCfg,
		reconciler: reconciler,
		joiner:     joiner,
		engine:     engine,
		ledger:     costLedger,
		store:      store,
		conn:       conn,
		logger:     logger,
	}
}

// Run executes the full pipeline over one batch of raw listings.
// Normalization failures abort the whole batch; later stages drop individual
// SKUs and keep going. Recommendations are persisted before the integrator
// push so a push failure never loses the run.
func (p *Pipeline) Run(ctx context.Context, raws []listing.RawListing) (Result, error) {
	res := Result{RunID: uuid.New().String()}
	logger := p.logger.With("run_id", res.RunID)

	observed := time.Now()
	if br := utils.TurnTimeToBR(observed); br != nil {
		observed = *br
	}

	rows, err := listing.Normalize(raws, p.normCfg, observed)
	if err != nil {
		return res, err
	}
	res.Listings = len(rows)
	logger.Info("Listings normalized", "count", len(rows))

	if err := p.store.CreateListings(ctx, toListingModels(rows)); err != nil {
		return res, err
	}

	comparisons := p.reconciler.Reconcile(rows)
	res.Compared = len(comparisons)

	skus := make([]string, 0, len(comparisons))
	for _, cmp := range comparisons {
		skus = append(skus, cmp.SKU)
	}

	records, err := p.ledger.Costs(ctx, skus)
	if err != nil {
		return res, err
	}

	pricingRows := p.joiner.Join(comparisons, records)
	priced := p.engine.Converge(pricingRows)
	res.Priced = len(priced)

	updates := batch.Assemble(priced)

	if err := p.store.CreateRecommendations(ctx, toRecommendationModels(res.RunID, priced, comparisons)); err != nil {
		return res, err
	}
	logger.Info("Recommendations persisted", "count", len(priced), "total", batch.Total(updates).String())

	if len(updates) > 0 {
		if err := p.conn.UpdatePrices(ctx, updates); err != nil {
			// Recommendations are already persisted; the push can be
			// replayed from them.
			logger.Error("Integrator push incomplete", "integrator", p.conn.Name(), "error", err)
			return res, err
		}
		res.Pushed = len(updates)
	}

	logger.Info("Pipeline run complete",
		"listings", res.Listings,
		"compared", res.Compared,
		"priced", res.Priced,
		"pushed", res.Pushed,
	)
	return res, nil
}

func toListingModels(rows []listing.Row) []*models.Listing {
	out := make([]*models.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, &models.Listing{
			SKU:        row.SKU,
			Brand:      row.Brand,
			Name:       row.Name,
			Price:      row.Price.String(),
			SellerName: row.SellerName,
			Date:       row.Date,
		})
	}
	return out
}

func toRecommendationModels(runID string, priced []costs.PricingRow, comparisons []reconcile.SkuComparison) []*models.PriceRecommendation {
	bySKU := make(map[string]reconcile.SkuComparison, len(comparisons))
	for _, cmp := range comparisons {
		bySKU[cmp.SKU] = cmp
	}

	out := make([]*models.PriceRecommendation, 0, len(priced))
	for _, row := range priced {
		rec := &models.PriceRecommendation{
			RunID:         runID,
			SKU:           row.SKU,
			SpecialPrice:  row.SpecialPrice.String(),
			EbitdaValue:   row.EbitdaValue.String(),
			EbitdaPercent: row.EbitdaPercent.String(),
		}
		if cmp, ok := bySKU[row.SKU]; ok {
			rec.OwnPrice = cmp.OwnPrice.String()
			rec.GainPercent = cmp.GainPercent.String()
			if cmp.HasCompetitor {
				rec.CompetitorPrice = cmp.CompetitorPrice.String()
			}
		}
		out = append(out, rec)
	}
	return out
}
