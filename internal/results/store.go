package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedlint/internal/logger"
	"feedlint/internal/models"
)

// MetaStore is the key-value persistence contract: three named slots per
// feed, get/set/delete by feed id. The database layer implements it; a
// size-limited backend rejects oversized payloads with ErrPayloadTooLarge.
type MetaStore interface {
	Get(feedID int, key string) ([]byte, error)
	Set(feedID int, key string, value []byte) error
	Delete(feedID int, key string) error
}

// Sentinel errors for MetaStore implementations.
var (
	ErrNotFound        = errors.New("results: not found")
	ErrPayloadTooLarge = errors.New("results: payload too large")
)

// Slot keys, one stored result set per feed.
const (
	keyFindings      = "validation_results"
	keySummary       = "validation_summary"
	keyLastValidated = "validation_last_run"
)

const (
	// StorageCap bounds what save persists per feed.
	StorageCap = 500
	// DisplayCap bounds what one paginated view exposes, applied after
	// filtering and independent of StorageCap.
	DisplayCap = 500
	// retryCap is the fallback payload size when the backend rejects a
	// capped set outright.
	retryCap = 100
)

// Filters narrows a stored result set. Zero values mean "no filter"; Search
// is a case-insensitive substring match across title, attribute, message and
// raw value.
type Filters struct {
	Severity  models.Severity `json:"severity,omitempty" form:"severity"`
	Attribute string          `json:"attribute,omitempty" form:"attribute"`
	ProductID int             `json:"product_id,omitempty" form:"product_id"`
	Rule      string          `json:"rule,omitempty" form:"rule"`
	Search    string          `json:"search,omitempty" form:"search"`
}

// Empty reports whether no filter is active.
func (f Filters) Empty() bool {
	return f.Severity == "" && f.Attribute == "" && f.ProductID == 0 && f.Rule == "" && f.Search == ""
}

// Page is one page of filtered findings. TotalFiltered counts all matches
// before the display cap; TotalReturned and TotalPages describe the capped
// set the caller can actually page through.
type Page struct {
	Items            []models.Finding `json:"items"`
	Page             int              `json:"page"`
	PerPage          int              `json:"per_page"`
	TotalFiltered    int              `json:"total_filtered"`
	TotalReturned    int              `json:"total_returned"`
	TotalPages       int              `json:"total_pages"`
	StoredTruncated  bool             `json:"stored_truncated"`
	DisplayTruncated bool             `json:"display_truncated"`
}

// GroupSummary is one row of a group-by-attribute or group-by-rule view.
type GroupSummary struct {
	Key      string `json:"key"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Info     int    `json:"info"`
	Total    int    `json:"total"`
}

// ProductSummary aggregates findings for one product.
type ProductSummary struct {
	ProductID    int    `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Errors       int    `json:"errors"`
	Warnings     int    `json:"warnings"`
	Info         int    `json:"info"`
	Total        int    `json:"total"`
}

// SeverityCounts is the filtered-summary payload shown next to a filtered
// result list.
type SeverityCounts struct {
	TotalErrors   int `json:"total_errors"`
	TotalWarnings int `json:"total_warnings"`
	TotalInfo     int `json:"total_info"`
	Total         int `json:"total"`
}

// Store owns the persisted result set of one feed.
type Store struct {
	feedID int
	meta   MetaStore
	logger *logger.Logger
}

// NewStore binds a store to one feed's slots.
func NewStore(feedID int, meta MetaStore, log *logger.Logger) *Store {
	return &Store{feedID: feedID, meta: meta, logger: log}
}

// SaveResults replaces the stored set. Oversized finding lists are truncated
// to StorageCap on the severity quota; the summary keeps the pre-truncation
// count. When the backend rejects even the capped payload, one retry with
// retryCap findings and a truncation_reason marker is attempted before
// giving up. The clear-then-write sequence is not transactional; a racing
// reader may observe an empty set.
func (s *Store) SaveResults(findings []models.Finding, summary models.ValidationSummary) error {
	if err := s.ClearResults(); err != nil {
		return fmt.Errorf("clear previous results: %w", err)
	}

	if summary.TotalIssuesFound < len(findings) {
		summary.TotalIssuesFound = len(findings)
	}
	if len(findings) > StorageCap {
		findings = models.TruncateBySeverity(findings, StorageCap)
	}

	err := s.write(findings, summary)
	if errors.Is(err, ErrPayloadTooLarge) {
		if s.logger != nil {
			s.logger.Info("feed %d: results payload rejected, retrying with %d findings", s.feedID, retryCap)
		}
		findings = models.TruncateBySeverity(findings, retryCap)
		summary.TruncationReason = "payload_too_large"
		err = s.write(findings, summary)
	}
	if err != nil {
		return fmt.Errorf("save results for feed %d: %w", s.feedID, err)
	}
	return nil
}

func (s *Store) write(findings []models.Finding, summary models.ValidationSummary) error {
	findingsJSON, err := json.Marshal(findings)
	if err != nil {
		return err
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	if err := s.meta.Set(s.feedID, keyFindings, findingsJSON); err != nil {
		return err
	}
	if err := s.meta.Set(s.feedID, keySummary, summaryJSON); err != nil {
		return err
	}
	stamp, _ := json.Marshal(time.Now().UTC())
	return s.meta.Set(s.feedID, keyLastValidated, stamp)
}

// ClearResults deletes all three slots unconditionally.
func (s *Store) ClearResults() error {
	for _, key := range []string{keyFindings, keySummary, keyLastValidated} {
		if err := s.meta.Delete(s.feedID, key); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *Store) loadFindings() ([]models.Finding, error) {
	raw, err := s.meta.Get(s.feedID, keyFindings)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var findings []models.Finding
	if err := json.Unmarshal(raw, &findings); err != nil {
		return nil, fmt.Errorf("decode stored findings: %w", err)
	}
	return findings, nil
}

// Summary returns the stored summary, or nil when no run was saved.
func (s *Store) Summary() (*models.ValidationSummary, error) {
	raw, err := s.meta.Get(s.feedID, keySummary)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary models.ValidationSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decode stored summary: %w", err)
	}
	return &summary, nil
}

// LastValidated returns the timestamp of the last saved run, or the zero
// time when none exists.
func (s *Store) LastValidated() (time.Time, error) {
	raw, err := s.meta.Get(s.feedID, keyLastValidated)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return time.Time{}, fmt.Errorf("decode last-validated stamp: %w", err)
	}
	return t, nil
}

func (s *Store) storedTruncated(stored int) bool {
	summary, err := s.Summary()
	if err != nil || summary == nil {
		return false
	}
	return summary.TotalIssuesFound > stored
}

// GetPaginatedResults filters the stored set, applies the display cap, then
// slices out one page.
func (s *Store) GetPaginatedResults(page, perPage int, filters Filters) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	findings, err := s.loadFindings()
	if err != nil {
		return nil, err
	}

	filtered := applyFilters(findings, filters)
	totalFiltered := len(filtered)

	capped := filtered
	if len(capped) > DisplayCap {
		capped = capped[:DisplayCap]
	}

	totalPages := (len(capped) + perPage - 1) / perPage
	start := (page - 1) * perPage
	end := start + perPage
	var items []models.Finding
	if start < len(capped) {
		if end > len(capped) {
			end = len(capped)
		}
		items = capped[start:end]
	}

	return &Page{
		Items:            items,
		Page:             page,
		PerPage:          perPage,
		TotalFiltered:    totalFiltered,
		TotalReturned:    len(capped),
		TotalPages:       totalPages,
		StoredTruncated:  s.storedTruncated(len(findings)),
		DisplayTruncated: totalFiltered > DisplayCap,
	}, nil
}

// GetFilteredSummary recomputes severity counts from the filtered and
// display-capped subset, so summary cards agree with the list the user sees.
func (s *Store) GetFilteredSummary(filters Filters) (*SeverityCounts, error) {
	findings, err := s.loadFindings()
	if err != nil {
		return nil, err
	}
	filtered := applyFilters(findings, filters)
	if len(filtered) > DisplayCap {
		filtered = filtered[:DisplayCap]
	}

	counts := &SeverityCounts{Total: len(filtered)}
	for _, f := range filtered {
		switch f.Severity {
		case models.SeverityError:
			counts.TotalErrors++
		case models.SeverityWarning:
			counts.TotalWarnings++
		case models.SeverityInfo:
			counts.TotalInfo++
		}
	}
	return counts, nil
}

// GetAttributeSummary groups stored findings by attribute with a per-severity
// breakdown, sorted descending by total.
func (s *Store) GetAttributeSummary() ([]GroupSummary, error) {
	return s.groupBy(func(f models.Finding) string { return f.Attribute })
}

// GetRuleSummary groups stored findings by rule identifier.
func (s *Store) GetRuleSummary() ([]GroupSummary, error) {
	return s.groupBy(func(f models.Finding) string { return f.Rule })
}

func (s *Store) groupBy(key func(models.Finding) string) ([]GroupSummary, error) {
	findings, err := s.loadFindings()
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*GroupSummary)
	order := make([]string, 0)
	for _, f := range findings {
		k := key(f)
		g, ok := groups[k]
		if !ok {
			g = &GroupSummary{Key: k}
			groups[k] = g
			order = append(order, k)
		}
		g.Total++
		switch f.Severity {
		case models.SeverityError:
			g.Errors++
		case models.SeverityWarning:
			g.Warnings++
		case models.SeverityInfo:
			g.Info++
		}
	}

	out := make([]GroupSummary, 0, len(groups))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sortGroupsByTotal(out)
	return out, nil
}

// GetTopProblematicProducts groups by product, sorted by error count, then
// warning count, then total, truncated to limit.
func (s *Store) GetTopProblematicProducts(limit int) ([]ProductSummary, error) {
	findings, err := s.loadFindings()
	if err != nil {
		return nil, err
	}

	byProduct := make(map[int]*ProductSummary)
	order := make([]int, 0)
	for _, f := range findings {
		p, ok := byProduct[f.ProductID]
		if !ok {
			p = &ProductSummary{ProductID: f.ProductID, ProductTitle: f.ProductTitle}
			byProduct[f.ProductID] = p
			order = append(order, f.ProductID)
		}
		p.Total++
		switch f.Severity {
		case models.SeverityError:
			p.Errors++
		case models.SeverityWarning:
			p.Warnings++
		case models.SeverityInfo:
			p.Info++
		}
	}

	out := make([]ProductSummary, 0, len(byProduct))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	sortProducts(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
