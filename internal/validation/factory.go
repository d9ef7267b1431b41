package validation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"feedlint/internal/logger"
	"feedlint/internal/models"
)

// FeedResolver resolves a feed's metadata so CreateFromFeed can pick the
// right merchant. Implemented by the database layer.
type FeedResolver interface {
	Feed(feedID int) (*models.Feed, error)
}

// Factory resolves merchant identifiers to validators. Identifiers are
// normalized (lowercased, spaces and hyphens to underscores) and run through
// an alias table, so "Google Shopping" and "google_local" both yield the
// Google validator. Third-party merchants can be registered at runtime.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]func() MerchantRules
	aliases  map[string]string

	resolver ProductResolver
	logger   *logger.Logger
}

// NewFactory returns a factory with the built-in merchants registered.
func NewFactory(resolver ProductResolver, log *logger.Logger) *Factory {
	f := &Factory{
		builders: map[string]func() MerchantRules{
			"google":    newGoogle,
			"facebook":  newFacebook,
			"instagram": newInstagram,
			"tiktok":    newTikTok,
			"pinterest": newPinterest,
			"yandex":    newYandex,
			"openai":    newOpenAI,
		},
		aliases: map[string]string{
			"google_shopping":  "google",
			"google_local":     "google",
			"google_merchant":  "google",
			"meta":             "facebook",
			"facebook_catalog": "facebook",
			"tik_tok":          "tiktok",
			"yandex_market":    "yandex",
			"openai_commerce":  "openai",
			"chatgpt":          "openai",
		},
		resolver: resolver,
		logger:   log,
	}
	return f
}

func normalizeMerchantName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, " ", "_")
	n = strings.ReplaceAll(n, "-", "_")
	return n
}

func (f *Factory) resolveName(name string) string {
	n := normalizeMerchantName(name)
	if canonical, ok := f.aliases[n]; ok {
		return canonical
	}
	return n
}

// Create builds a validator for a merchant and feed, or nil when the
// merchant is unknown.
func (f *Factory) Create(merchant string, feedID int) *Validator {
	f.mu.RLock()
	builder, ok := f.builders[f.resolveName(merchant)]
	f.mu.RUnlock()
	if !ok {
		if f.logger != nil {
			f.logger.Debug("no validator registered for merchant %q", merchant)
		}
		return nil
	}
	return NewValidator(builder(), feedID, f.resolver, f.logger)
}

// CreateFromFeed resolves the merchant from stored feed metadata, then
// delegates to Create.
func (f *Factory) CreateFromFeed(feedID int, feeds FeedResolver) (*Validator, error) {
	feed, err := feeds.Feed(feedID)
	if err != nil {
		return nil, fmt.Errorf("resolve feed %d: %w", feedID, err)
	}
	v := f.Create(feed.Merchant, feedID)
	if v == nil {
		return nil, fmt.Errorf("feed %d uses unsupported merchant %q", feedID, feed.Merchant)
	}
	return v, nil
}

// IsSupported reports whether a merchant name (or alias) resolves to a
// registered validator.
func (f *Factory) IsSupported(merchant string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.builders[f.resolveName(merchant)]
	return ok
}

// Register adds a merchant at runtime. The builder must produce a
// non-nil MerchantRules with a non-empty merchant name and rule set;
// anything else is rejected. Returns false instead of overwriting an
// existing registration.
func (f *Factory) Register(name string, builder func() MerchantRules) bool {
	n := normalizeMerchantName(name)
	if n == "" || builder == nil {
		return false
	}
	probe := builder()
	if probe == nil || probe.Merchant() == "" || probe.Rules() == nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.builders[n]; exists {
		return false
	}
	f.builders[n] = builder
	return true
}

// Merchants lists the registered canonical merchant names, sorted.
func (f *Factory) Merchants() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.builders))
	for name := range f.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
