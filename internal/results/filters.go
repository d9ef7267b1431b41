package results

import (
	"sort"
	"strings"

	"feedlint/internal/models"
)

// applyFilters narrows a finding list. Exact matches on severity, attribute,
// product id and rule; the search term is a case-insensitive substring scan
// across title, attribute, message and raw value. Order is preserved.
func applyFilters(findings []models.Finding, f Filters) []models.Finding {
	if f.Empty() {
		return findings
	}

	search := strings.ToLower(f.Search)
	out := make([]models.Finding, 0, len(findings))
	for _, finding := range findings {
		if f.Severity != "" && finding.Severity != f.Severity {
			continue
		}
		if f.Attribute != "" && finding.Attribute != f.Attribute {
			continue
		}
		if f.ProductID != 0 && finding.ProductID != f.ProductID {
			continue
		}
		if f.Rule != "" && finding.Rule != f.Rule {
			continue
		}
		if search != "" && !matchesSearch(finding, search) {
			continue
		}
		out = append(out, finding)
	}
	return out
}

func matchesSearch(f models.Finding, search string) bool {
	for _, field := range []string{f.ProductTitle, f.Attribute, f.Message, f.Raw()} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func sortGroupsByTotal(groups []GroupSummary) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
}

func sortProducts(products []ProductSummary) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.Errors != b.Errors {
			return a.Errors > b.Errors
		}
		if a.Warnings != b.Warnings {
			return a.Warnings > b.Warnings
		}
		return a.Total > b.Total
	})
}
