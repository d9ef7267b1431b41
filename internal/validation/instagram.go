package validation

import (
	"fmt"
	"strings"

	"feedlint/internal/models"
)

// Instagram-specific rule identifiers.
const (
	RuleProhibitedContent = "prohibited_content"
	RuleExcessiveEmoji    = "excessive_emoji"
)

// prohibitedContentKeywords are categories Instagram shopping rejects.
var prohibitedContentKeywords = []string{
	"tobacco", "cigarette", "cigar", "vape", "e-cigarette",
	"weapon", "firearm", "gun", "ammunition", "explosive",
	"counterfeit", "replica", "knock-off", "knockoff",
	"drug", "narcotic", "steroid",
	"gambling", "casino chips",
}

// instagramValidator layers Instagram's content policy on top of the
// Facebook catalog rules it shares.
type instagramValidator struct {
	facebookValidator
}

func newInstagram() MerchantRules {
	return &instagramValidator{facebookValidator{rules: facebookRules}}
}

func (i *instagramValidator) Merchant() string { return "instagram" }

func (i *instagramValidator) RunCustomValidations(pc *ProductContext) {
	pc.SetSuggestionCap(3)
	i.runSharedValidations(pc)
	i.checkProhibitedContent(pc)
	i.checkEmoji(pc)
	i.suggestOptimizations(pc)
}

func (i *instagramValidator) checkProhibitedContent(pc *ProductContext) {
	for _, attr := range []string{"title", "description"} {
		value := pc.Attr(attr)
		if value == "" {
			continue
		}
		lower := strings.ToLower(value)
		for _, kw := range prohibitedContentKeywords {
			if strings.Contains(lower, kw) {
				pc.Add(attr, RuleProhibitedContent, models.SeverityError, &value,
					fmt.Sprintf("%q mentions restricted content (%q)", attr, kw))
				break
			}
		}
	}
}

func (i *instagramValidator) checkEmoji(pc *ProductContext) {
	title := pc.Attr("title")
	if title == "" {
		return
	}
	if n := CountEmoji(title); n > 2 {
		pc.Add("title", RuleExcessiveEmoji, models.SeverityWarning, &title,
			fmt.Sprintf("Title contains %d emoji; keep it to 2 or fewer", n))
	}
}
