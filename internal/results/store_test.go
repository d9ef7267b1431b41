package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedlint/internal/models"
)

// memMeta is an in-memory MetaStore. maxBytes > 0 makes it reject oversized
// payloads the way a size-limited backend does.
type memMeta struct {
	data     map[string][]byte
	maxBytes int
	sets     int
}

func newMemMeta() *memMeta {
	return &memMeta{data: make(map[string][]byte)}
}

func metaKey(feedID int, key string) string {
	return fmt.Sprintf("%d/%s", feedID, key)
}

func (m *memMeta) Get(feedID int, key string) ([]byte, error) {
	v, ok := m.data[metaKey(feedID, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memMeta) Set(feedID int, key string, value []byte) error {
	m.sets++
	if m.maxBytes > 0 && len(value) > m.maxBytes {
		return ErrPayloadTooLarge
	}
	m.data[metaKey(feedID, key)] = value
	return nil
}

func (m *memMeta) Delete(feedID int, key string) error {
	k := metaKey(feedID, key)
	if _, ok := m.data[k]; !ok {
		return ErrNotFound
	}
	delete(m.data, k)
	return nil
}

func testFindings(n int, severity models.Severity) []models.Finding {
	out := make([]models.Finding, n)
	for i := range out {
		raw := fmt.Sprintf("value-%d", i)
		out[i] = models.Finding{
			ProductID:    i%10 + 1,
			ProductTitle: fmt.Sprintf("Product %d", i%10+1),
			Attribute:    "title",
			Rule:         "character_limit_max",
			Severity:     severity,
			RawValue:     &raw,
			Message:      fmt.Sprintf("finding %d", i),
			Merchant:     "google",
			Timestamp:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func savedStore(t *testing.T, findings []models.Finding) *Store {
	t.Helper()
	s := NewStore(1, newMemMeta(), nil)
	require.NoError(t, s.SaveResults(findings, models.Summarize(findings)))
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	findings := testFindings(10, models.SeverityError)
	s := savedStore(t, findings)

	page, err := s.GetPaginatedResults(1, 20, Filters{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 10, page.TotalFiltered)
	assert.False(t, page.StoredTruncated)

	summary, err := s.Summary()
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 10, summary.TotalErrors)
	assert.Equal(t, 10, summary.TotalIssuesFound)

	last, err := s.LastValidated()
	require.NoError(t, err)
	assert.False(t, last.IsZero())
}

func TestSaveTruncatesToStorageCap(t *testing.T) {
	var findings []models.Finding
	findings = append(findings, testFindings(400, models.SeverityError)...)
	findings = append(findings, testFindings(400, models.SeverityWarning)...)
	summary := models.Summarize(findings)

	s := savedStore(t, findings)

	page, err := s.GetPaginatedResults(1, 1000, Filters{})
	require.NoError(t, err)
	assert.Equal(t, StorageCap, page.TotalFiltered)
	assert.True(t, page.StoredTruncated)

	stored, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, summary.TotalIssuesFound, stored.TotalIssuesFound)
	assert.Equal(t, 800, stored.TotalIssuesFound)
}

func TestSaveRetriesOnPayloadTooLarge(t *testing.T) {
	meta := newMemMeta()
	// Large enough for 100 findings plus summary, too small for 500.
	meta.maxBytes = 64 * 1024
	s := NewStore(1, meta, nil)

	findings := testFindings(500, models.SeverityError)
	require.NoError(t, s.SaveResults(findings, models.Summarize(findings)))

	page, err := s.GetPaginatedResults(1, 1000, Filters{})
	require.NoError(t, err)
	assert.Equal(t, 100, page.TotalFiltered)

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, "payload_too_large", summary.TruncationReason)
	assert.Equal(t, 500, summary.TotalIssuesFound)
}

func TestPaginationBounds(t *testing.T) {
	s := savedStore(t, testFindings(45, models.SeverityWarning))

	page, err := s.GetPaginatedResults(1, 20, Filters{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 20)
	assert.Equal(t, 3, page.TotalPages)

	page, err = s.GetPaginatedResults(3, 20, Filters{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)

	// Out-of-range pages return empty items, not an error.
	page, err = s.GetPaginatedResults(9, 20, Filters{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// Nonsense inputs fall back to defaults.
	page, err = s.GetPaginatedResults(0, 0, Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)
}

func TestFilters(t *testing.T) {
	var findings []models.Finding
	findings = append(findings, testFindings(6, models.SeverityError)...)
	findings = append(findings, testFindings(4, models.SeverityWarning)...)
	s := savedStore(t, findings)

	page, err := s.GetPaginatedResults(1, 50, Filters{Severity: models.SeverityWarning})
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalFiltered)

	page, err = s.GetPaginatedResults(1, 50, Filters{ProductID: 3})
	require.NoError(t, err)
	for _, f := range page.Items {
		assert.Equal(t, 3, f.ProductID)
	}

	page, err = s.GetPaginatedResults(1, 50, Filters{Search: "PRODUCT 2"})
	require.NoError(t, err)
	assert.NotEmpty(t, page.Items)

	page, err = s.GetPaginatedResults(1, 50, Filters{Rule: "no_such_rule"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalFiltered)
}

func TestGetFilteredSummary(t *testing.T) {
	var findings []models.Finding
	findings = append(findings, testFindings(6, models.SeverityError)...)
	findings = append(findings, testFindings(3, models.SeverityInfo)...)
	s := savedStore(t, findings)

	counts, err := s.GetFilteredSummary(Filters{Severity: models.SeverityInfo})
	require.NoError(t, err)
	assert.Equal(t, 3, counts.TotalInfo)
	assert.Zero(t, counts.TotalErrors)
	assert.Equal(t, 3, counts.Total)

	counts, err = s.GetFilteredSummary(Filters{})
	require.NoError(t, err)
	assert.Equal(t, 9, counts.Total)
}

func TestGroupSummaries(t *testing.T) {
	findings := []models.Finding{
		{ProductID: 1, Attribute: "title", Rule: "a", Severity: models.SeverityError},
		{ProductID: 1, Attribute: "title", Rule: "a", Severity: models.SeverityWarning},
		{ProductID: 2, Attribute: "price", Rule: "b", Severity: models.SeverityError},
	}
	s := savedStore(t, findings)

	byAttr, err := s.GetAttributeSummary()
	require.NoError(t, err)
	require.Len(t, byAttr, 2)
	assert.Equal(t, "title", byAttr[0].Key)
	assert.Equal(t, 2, byAttr[0].Total)
	assert.Equal(t, 1, byAttr[0].Errors)
	assert.Equal(t, 1, byAttr[0].Warnings)

	byRule, err := s.GetRuleSummary()
	require.NoError(t, err)
	assert.Equal(t, "a", byRule[0].Key)
}

func TestTopProblematicProducts(t *testing.T) {
	findings := []models.Finding{
		{ProductID: 1, ProductTitle: "One", Severity: models.SeverityWarning},
		{ProductID: 1, ProductTitle: "One", Severity: models.SeverityWarning},
		{ProductID: 1, ProductTitle: "One", Severity: models.SeverityWarning},
		{ProductID: 2, ProductTitle: "Two", Severity: models.SeverityError},
		{ProductID: 3, ProductTitle: "Three", Severity: models.SeverityInfo},
	}
	s := savedStore(t, findings)

	top, err := s.GetTopProblematicProducts(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	// Errors outrank any number of warnings.
	assert.Equal(t, 2, top[0].ProductID)
	assert.Equal(t, 1, top[1].ProductID)
}

func TestClearResults(t *testing.T) {
	s := savedStore(t, testFindings(5, models.SeverityError))
	require.NoError(t, s.ClearResults())

	page, err := s.GetPaginatedResults(1, 20, Filters{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Nil(t, summary)

	// Clearing an already-empty store is fine.
	require.NoError(t, s.ClearResults())
}

func TestExportCSV(t *testing.T) {
	raw := `He said "hello", twice`
	findings := []models.Finding{{
		ProductID:    7,
		ProductTitle: "Mug, ceramic",
		Attribute:    "title",
		Rule:         "promotional_language_in_title",
		Severity:     models.SeverityWarning,
		RawValue:     &raw,
		Message:      "Title contains promotional language, remove it",
		Timestamp:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}}
	s := savedStore(t, findings)

	out, err := s.ExportCSV(Filters{})
	require.NoError(t, err)

	// Fields with commas and quotes survive a round trip.
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "7", records[1][0])
	assert.Equal(t, "Mug, ceramic", records[1][1])
	assert.Equal(t, raw, records[1][5])
	assert.Equal(t, "2026-08-30T12:00:00Z", records[1][7])

	// The raw bytes quote the comma-bearing fields.
	assert.Contains(t, string(out), `"Mug, ceramic"`)
}

func TestExportCSVFullStoredSet(t *testing.T) {
	s := savedStore(t, testFindings(480, models.SeverityError))

	out, err := s.ExportCSV(Filters{})
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 481) // header + all stored findings
}

func TestExportJSON(t *testing.T) {
	findings := testFindings(3, models.SeverityError)
	s := savedStore(t, findings)

	out, err := s.ExportJSON(Filters{})
	require.NoError(t, err)

	var payload struct {
		FeedID        int                       `json:"feed_id"`
		Summary       *models.ValidationSummary `json:"summary"`
		LastValidated time.Time                 `json:"last_validated"`
		Results       []models.Finding          `json:"results"`
	}
	require.NoError(t, json.Unmarshal(out, &payload))
	assert.Equal(t, 1, payload.FeedID)
	require.NotNil(t, payload.Summary)
	assert.Equal(t, 3, payload.Summary.TotalErrors)
	assert.Len(t, payload.Results, 3)
	assert.False(t, payload.LastValidated.IsZero())
}
