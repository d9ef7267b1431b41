package models

import "time"

// Severity ranks a finding. Ordering matters for truncation: errors are
// retained ahead of warnings, warnings ahead of info.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one validation result for a (product, attribute) pair. Findings
// are created by validators and never mutated afterwards.
type Finding struct {
	ProductID    int       `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	Attribute    string    `json:"attribute"`
	Rule         string    `json:"rule"`
	Severity     Severity  `json:"severity"`
	RawValue     *string   `json:"raw_value"`
	Message      string    `json:"message"`
	Merchant     string    `json:"merchant"`
	Timestamp    time.Time `json:"timestamp"`
	IsVariation  bool      `json:"is_variation"`
	ParentID     int       `json:"parent_id"`
}

// Raw returns the offending value or an empty string when none was recorded.
func (f Finding) Raw() string {
	if f.RawValue == nil {
		return ""
	}
	return *f.RawValue
}

// ValidationSummary is the aggregate view of a finding collection.
// TotalIssuesFound preserves the pre-truncation count when the stored set was
// capped.
type ValidationSummary struct {
	TotalErrors      int            `json:"total_errors"`
	TotalWarnings    int            `json:"total_warnings"`
	TotalInfo        int            `json:"total_info"`
	TotalIssuesFound int            `json:"total_issues_found"`
	ByAttribute      map[string]int `json:"by_attribute"`
	ByRule           map[string]int `json:"by_rule"`
	RunID            string         `json:"run_id,omitempty"`
	ProductsChecked  int            `json:"products_checked,omitempty"`
	DurationMS       int64          `json:"duration_ms,omitempty"`
	TruncationReason string         `json:"truncation_reason,omitempty"`
}

// Summarize derives a summary from a finding collection. Pure function of its
// input; TotalIssuesFound is set to len(findings).
func Summarize(findings []Finding) ValidationSummary {
	s := ValidationSummary{
		TotalIssuesFound: len(findings),
		ByAttribute:      make(map[string]int),
		ByRule:           make(map[string]int),
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.TotalErrors++
		case SeverityWarning:
			s.TotalWarnings++
		case SeverityInfo:
			s.TotalInfo++
		}
		s.ByAttribute[f.Attribute]++
		s.ByRule[f.Rule]++
	}
	return s
}

// TruncateBySeverity bounds a finding list to max items, keeping errors ahead
// of warnings and warnings ahead of info on a 60/30/10 quota. Capacity unused
// by one category spills into the next, highest severity first, so the result
// is always exactly min(len(findings), max) items. Relative order within a
// severity is preserved.
func TruncateBySeverity(findings []Finding, max int) []Finding {
	if len(findings) <= max {
		return findings
	}

	var errs, warns, infos []Finding
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			errs = append(errs, f)
		case SeverityWarning:
			warns = append(warns, f)
		default:
			infos = append(infos, f)
		}
	}

	quotaErr := max * 60 / 100
	quotaWarn := max * 30 / 100
	quotaInfo := max - quotaErr - quotaWarn

	takeErr := minInt(len(errs), quotaErr)
	takeWarn := minInt(len(warns), quotaWarn)
	takeInfo := minInt(len(infos), quotaInfo)

	// Spill leftover capacity back, errors first.
	for spare := max - takeErr - takeWarn - takeInfo; spare > 0; {
		switch {
		case takeErr < len(errs):
			grab := minInt(spare, len(errs)-takeErr)
			takeErr += grab
			spare -= grab
		case takeWarn < len(warns):
			grab := minInt(spare, len(warns)-takeWarn)
			takeWarn += grab
			spare -= grab
		case takeInfo < len(infos):
			grab := minInt(spare, len(infos)-takeInfo)
			takeInfo += grab
			spare -= grab
		default:
			spare = 0
		}
	}

	out := make([]Finding, 0, max)
	out = append(out, errs[:takeErr]...)
	out = append(out, warns[:takeWarn]...)
	out = append(out, infos[:takeInfo]...)
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
