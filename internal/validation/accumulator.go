package validation

import (
	"time"

	"feedlint/internal/models"
)

// MaxStoredFindings is the hard cap on findings retained per feed, shared by
// the accumulator and the results store.
const MaxStoredFindings = 500

// Accumulator collects findings incrementally while a feed is being
// generated, one product at a time. It applies the same proportional
// truncation as the results store whenever the buffer outgrows the cap, so a
// long generation run never holds an unbounded finding list. One accumulator
// serves one feed; it is passed explicitly through the generation call chain
// rather than looked up from shared state, and concurrent generation of the
// same feed is last-write-wins at finalize time.
type Accumulator struct {
	feedID    int
	runID     string
	findings  []models.Finding
	totalSeen int
	products  int
	started   time.Time
}

// NewAccumulator starts an empty buffer for one feed's generation run.
func NewAccumulator(feedID int, runID string) *Accumulator {
	return &Accumulator{feedID: feedID, runID: runID, started: time.Now()}
}

// FeedID returns the feed this accumulator collects for.
func (a *Accumulator) FeedID() int { return a.feedID }

// Append adds one product's findings to the buffer, truncating when the
// buffer exceeds the cap.
func (a *Accumulator) Append(findings []models.Finding) {
	a.products++
	if len(findings) == 0 {
		return
	}
	a.totalSeen += len(findings)
	a.findings = append(a.findings, findings...)
	if len(a.findings) > MaxStoredFindings {
		a.findings = models.TruncateBySeverity(a.findings, MaxStoredFindings)
	}
}

// Truncated reports whether any findings were dropped so far.
func (a *Accumulator) Truncated() bool { return a.totalSeen > len(a.findings) }

// Finalize returns the buffered findings and a summary whose
// TotalIssuesFound preserves the pre-truncation count. The buffer is reset so
// an aborted caller leaves nothing behind.
func (a *Accumulator) Finalize() ([]models.Finding, models.ValidationSummary) {
	findings := a.findings
	summary := models.Summarize(findings)
	summary.TotalIssuesFound = a.totalSeen
	summary.RunID = a.runID
	summary.ProductsChecked = a.products
	summary.DurationMS = time.Since(a.started).Milliseconds()

	a.findings = nil
	a.totalSeen = 0
	a.products = 0
	return findings, summary
}
