package handlers

import (
	"net/http"
	"strconv"
	"time"

	"feedlint/internal/database"
	"feedlint/internal/feedmap"
	"feedlint/internal/logger"
	"feedlint/internal/results"
	"feedlint/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ValidateHandler struct {
	factory    *validation.Factory
	feeds      *database.FeedResolver
	products   *database.ProductResolver
	meta       results.MetaStore
	productCap int
	logger     *logger.Logger
}

func NewValidateHandler(factory *validation.Factory, feeds *database.FeedResolver, products *database.ProductResolver, meta results.MetaStore, productCap int, logger *logger.Logger) *ValidateHandler {
	return &ValidateHandler{
		factory:    factory,
		feeds:      feeds,
		products:   products,
		meta:       meta,
		productCap: productCap,
		logger:     logger,
	}
}

// Run validates every product of a feed synchronously and replaces the
// feed's stored result set. The product list is capped; incremental
// validation during feed generation goes through the worker instead.
func (h *ValidateHandler) Run(c *gin.Context) {
	feedID, err := strconv.Atoi(c.Param("id"))
	if err != nil || feedID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed id"})
		return
	}

	validator, err := h.factory.CreateFromFeed(feedID, h.feeds)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	products, err := h.products.Products(h.productCap)
	if err != nil {
		h.logger.Error("load products for feed %d: %v", feedID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	run := uuid.New().String()
	started := time.Now()
	acc := validation.NewAccumulator(feedID, run)
	for i := range products {
		p := &products[i]
		attrs := make(map[string]interface{}, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		findings := validator.ValidateProduct(p.ID, feedmap.Normalize(attrs), "")
		acc.Append(findings)
	}

	findings, summary := acc.Finalize()
	store := results.NewStore(feedID, h.meta, h.logger)
	if err := store.SaveResults(findings, summary); err != nil {
		h.logger.Error("save results for feed %d: %v", feedID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save results"})
		return
	}

	h.logger.Info("feed %d validated: %d products, %d issues in %s",
		feedID, len(products), summary.TotalIssuesFound, time.Since(started))

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// Merchants lists supported merchant identifiers.
func (h *ValidateHandler) Merchants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.factory.Merchants()})
}
