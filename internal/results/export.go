package results

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"feedlint/internal/models"
)

// csvHeader is the fixed export column order.
var csvHeader = []string{
	"Product ID", "Product Title", "Attribute", "Rule", "Severity",
	"Raw Value", "Message", "Timestamp",
}

// ExportCSV serializes the full filtered set (no display cap) as RFC-4180
// CSV with a header row.
func (s *Store) ExportCSV(filters Filters) ([]byte, error) {
	findings, err := s.loadFindings()
	if err != nil {
		return nil, err
	}
	filtered := applyFilters(findings, filters)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, f := range filtered {
		record := []string{
			strconv.Itoa(f.ProductID),
			f.ProductTitle,
			f.Attribute,
			f.Rule,
			string(f.Severity),
			f.Raw(),
			f.Message,
			f.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

type jsonExport struct {
	FeedID        int                       `json:"feed_id"`
	Summary       *models.ValidationSummary `json:"summary"`
	LastValidated time.Time                 `json:"last_validated"`
	Results       []models.Finding          `json:"results"`
}

// ExportJSON serializes the full filtered set plus summary and timestamp,
// pretty-printed.
func (s *Store) ExportJSON(filters Filters) ([]byte, error) {
	findings, err := s.loadFindings()
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary()
	if err != nil {
		return nil, err
	}
	last, err := s.LastValidated()
	if err != nil {
		return nil, err
	}

	payload := jsonExport{
		FeedID:        s.feedID,
		Summary:       summary,
		LastValidated: last,
		Results:       applyFilters(findings, filters),
	}
	return json.MarshalIndent(payload, "", "  ")
}
