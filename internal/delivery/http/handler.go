package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kainolt/backend/internal/domain"
	"github.com/kainolt/backend/internal/usecase"
)

// FlyerFetcher discovers and downloads retailer flyer PDFs
type FlyerFetcher interface {
	FindFlyerURLs(ctx context.Context, retailer string) ([]string, error)
	DownloadFlyer(ctx context.Context, url string) ([]byte, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer *usecase.Analyzer
	fetcher  FlyerFetcher
}

// NewHandler creates a new HTTP handler
func NewHandler(analyzer *usecase.Analyzer, fetcher FlyerFetcher) *Handler {
	return &Handler{analyzer: analyzer, fetcher: fetcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "kainolt-backend",
		"version": "1.0.0",
	})
}

type parseRequest struct {
	Retailer string `json:"retailer" binding:"required"`
	Source   string `json:"source"`
	Text     string `json:"text"`
	Data     []byte `json:"data"` // base64-encoded document bytes
	UseOCR   bool   `json:"useOcr"`
}

// ParseFlyer extracts offers from submitted flyer text or document bytes
func (h *Handler) ParseFlyer(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		offers []domain.ProductOffer
		err    error
	)
	switch {
	case req.Text != "":
		offers, err = h.analyzer.ParseText(c.Request.Context(), req.Text, req.Retailer, req.Source)
	case len(req.Data) > 0:
		offers, err = h.analyzer.ParseDocument(c.Request.Context(), req.Data, req.Retailer, req.Source, req.UseOCR)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either text or data is required"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(offers), "offers": offers})
}

type fetchRequest struct {
	Retailer string `json:"retailer" binding:"required"`
	UseOCR   bool   `json:"useOcr"`
}

// FetchFlyer downloads a retailer's current flyer and parses it
func (h *Handler) FetchFlyer(c *gin.Context) {
	if h.fetcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "flyer fetching is not configured"})
		return
	}

	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	urls, err := h.fetcher.FindFlyerURLs(ctx, req.Retailer)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.fetcher.DownloadFlyer(ctx, urls[0])
	if err != nil {
		respondError(c, err)
		return
	}

	offers, err := h.analyzer.ParseDocument(ctx, data, req.Retailer, urls[0], req.UseOCR)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(offers), "offers": offers, "source": urls[0]})
}

type importRequest struct {
	Rows []usecase.ImportRow `json:"rows" binding:"required"`
}

// ImportOffers validates tabular rows into the session repository. Row
// failures are reported alongside the successes; the batch never aborts.
func (h *Handler) ImportOffers(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offers, rowErrs := h.analyzer.ImportRecords(req.Rows)
	c.JSON(http.StatusOK, gin.H{
		"imported": len(offers),
		"offers":   offers,
		"errors":   rowErrorMessages(rowErrs),
	})
}

// ImportCSV reads a CSV batch from the request body
func (h *Handler) ImportCSV(c *gin.Context) {
	offers, rowErrs, err := h.analyzer.ImportCSV(c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": len(offers),
		"offers":   offers,
		"errors":   rowErrorMessages(rowErrs),
	})
}

// BestDeals returns the top promotional offers
func (h *Handler) BestDeals(c *gin.Context) {
	topN := 10
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top must be an integer"})
			return
		}
		topN = n
	}

	deals, err := h.analyzer.BestDeals(c.Query("category"), topN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

// Compare groups offers matching the query by product, cheapest first
func (h *Handler) Compare(c *gin.Context) {
	groups, err := h.analyzer.Compare(c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": groups})
}

type optimizeRequest struct {
	Requirements []domain.CartRequirement `json:"requirements" binding:"required"`
	Budget       float64                  `json:"budget" binding:"required"`
	Strategy     string                   `json:"strategy"`
}

// OptimizeCart builds a cart for the requested category quantities
func (h *Handler) OptimizeCart(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	strategy := domain.StrategyMaxSavings
	if req.Strategy != "" {
		var err error
		strategy, err = domain.ParseStrategy(req.Strategy)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	result, err := h.analyzer.OptimizeCart(req.Requirements, domain.CartConstraint{
		Budget:   req.Budget,
		Strategy: strategy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ShoppingList fills a quota-free promo list within the budget
func (h *Handler) ShoppingList(c *gin.Context) {
	budget, err := strconv.ParseFloat(c.Query("budget"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "budget must be a number"})
		return
	}

	strategy := domain.StrategyMaxSavings
	if raw := c.Query("strategy"); raw != "" {
		strategy, err = domain.ParseStrategy(raw)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	list, err := h.analyzer.ShoppingList(budget, strategy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

// Summary aggregates the loaded offers per retailer
func (h *Handler) Summary(c *gin.Context) {
	summaries, err := h.analyzer.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"retailers": summaries})
}

// ShoppingGuide renders the plain-text shopping guide
func (h *Handler) ShoppingGuide(c *gin.Context) {
	var b strings.Builder
	if err := h.analyzer.ShoppingGuide(&b); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, b.String())
}

// respondError maps domain errors to HTTP status codes. Errors cross the
// boundary as structured kind+message pairs, never as stack traces.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnsupportedRetailer):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData), errors.Is(err, domain.ErrFlyerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrParseFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrFetchFailed):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func rowErrorMessages(rowErrs []*domain.RowError) []string {
	msgs := make([]string, len(rowErrs))
	for i, e := range rowErrs {
		msgs[i] = e.Error()
	}
	return msgs
}
