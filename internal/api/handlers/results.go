package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"feedlint/internal/logger"
	"feedlint/internal/models"
	"feedlint/internal/results"

	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	meta   results.MetaStore
	logger *logger.Logger
}

func NewResultsHandler(meta results.MetaStore, logger *logger.Logger) *ResultsHandler {
	return &ResultsHandler{
		meta:   meta,
		logger: logger,
	}
}

func (h *ResultsHandler) store(c *gin.Context) (*results.Store, bool) {
	feedID, err := strconv.Atoi(c.Param("id"))
	if err != nil || feedID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed id"})
		return nil, false
	}
	return results.NewStore(feedID, h.meta, h.logger), true
}

func filtersFromQuery(c *gin.Context) results.Filters {
	productID, _ := strconv.Atoi(c.Query("product_id"))
	return results.Filters{
		Severity:  models.Severity(c.Query("severity")),
		Attribute: c.Query("attribute"),
		ProductID: productID,
		Rule:      c.Query("rule"),
		Search:    c.Query("search"),
	}
}

func (h *ResultsHandler) List(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := store.GetPaginatedResults(page, perPage, filtersFromQuery(c))
	if err != nil {
		h.logger.Error("list results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result.Items,
		"pagination": gin.H{
			"page":           result.Page,
			"limit":          result.PerPage,
			"total_filtered": result.TotalFiltered,
			"total_returned": result.TotalReturned,
			"total_pages":    result.TotalPages,
		},
		"stored_truncated":  result.StoredTruncated,
		"display_truncated": result.DisplayTruncated,
	})
}

// Summary returns the stored summary, or a recomputed one when filters are
// active so the cards match the visible list.
func (h *ResultsHandler) Summary(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	filters := filtersFromQuery(c)
	if !filters.Empty() {
		counts, err := store.GetFilteredSummary(filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": counts, "filtered": true})
		return
	}

	summary, err := store.Summary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch summary"})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No validation results for this feed"})
		return
	}
	last, _ := store.LastValidated()
	c.JSON(http.StatusOK, gin.H{"data": summary, "last_validated": last})
}

func (h *ResultsHandler) AttributeSummary(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	groups, err := store.GetAttributeSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attribute summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (h *ResultsHandler) RuleSummary(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	groups, err := store.GetRuleSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rule summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (h *ResultsHandler) TopProducts(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	products, err := store.GetTopProblematicProducts(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (h *ResultsHandler) Export(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	filters := filtersFromQuery(c)

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := store.ExportCSV(filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=feed-%s-validation.csv", c.Param("id")))
		c.Data(http.StatusOK, "text/csv", data)
	case "json":
		data, err := store.ExportJSON(filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=feed-%s-validation.json", c.Param("id")))
		c.Data(http.StatusOK, "application/json", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported export format"})
	}
}

func (h *ResultsHandler) Clear(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	if err := store.ClearResults(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "cleared"})
}
