package processors

import (
	"fmt"
	"time"

	"feedlint/internal/config"
	"feedlint/internal/database"
	"feedlint/internal/feedmap"
	"feedlint/internal/logger"
	"feedlint/internal/results"
	"feedlint/internal/validation"

	"github.com/google/uuid"
)

// Feed event types published by the generators.
const (
	EventFeedStarted   = "feed.generation_started"
	EventFeedProduct   = "feed.product"
	EventFeedCompleted = "feed.generation_completed"
)

// FeedEvent is one message on the feed-events topic. Product events carry
// the raw tag-keyed attribute map extracted while the feed entry was
// written.
type FeedEvent struct {
	Type         string                 `json:"type"`
	FeedID       int                    `json:"feed_id"`
	ProductID    int                    `json:"product_id,omitempty"`
	DisplayTitle string                 `json:"display_title,omitempty"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// FeedEventProcessor validates products as feed generation streams them by
// and finalizes the accumulated findings into the results store when a feed
// completes. One accumulator per feed; a restarted generation run replaces
// the previous buffer (last write wins).
type FeedEventProcessor struct {
	config  *config.Config
	logger  *logger.Logger
	factory *validation.Factory
	feeds   *database.FeedResolver
	meta    results.MetaStore

	accumulators map[int]*validation.Accumulator
	validators   map[int]*validation.Validator
}

func NewFeedEventProcessor(cfg *config.Config, logger *logger.Logger, db *database.Database) *FeedEventProcessor {
	return &FeedEventProcessor{
		config:       cfg,
		logger:       logger,
		factory:      validation.NewFactory(db.NewProductResolver(), logger),
		feeds:        db.NewFeedResolver(),
		meta:         db.NewMetaStore(cfg.ResultsMaxPayloadBytes),
		accumulators: make(map[int]*validation.Accumulator),
		validators:   make(map[int]*validation.Validator),
	}
}

func (p *FeedEventProcessor) Process(event FeedEvent) error {
	switch event.Type {
	case EventFeedStarted:
		return p.start(event)
	case EventFeedProduct:
		return p.product(event)
	case EventFeedCompleted:
		return p.complete(event)
	default:
		p.logger.Debug("Ignoring event type %q", event.Type)
		return nil
	}
}

func (p *FeedEventProcessor) start(event FeedEvent) error {
	validator, err := p.factory.CreateFromFeed(event.FeedID, p.feeds)
	if err != nil {
		return err
	}
	p.validators[event.FeedID] = validator
	p.accumulators[event.FeedID] = validation.NewAccumulator(event.FeedID, uuid.New().String())
	p.logger.Info("Feed %d: accumulating findings for merchant %q", event.FeedID, validator.Merchant())
	return nil
}

func (p *FeedEventProcessor) product(event FeedEvent) error {
	acc, ok := p.accumulators[event.FeedID]
	if !ok {
		// Generator restarted mid-stream or events arrived out of order;
		// recover by opening a fresh run.
		if err := p.start(event); err != nil {
			return err
		}
		acc = p.accumulators[event.FeedID]
	}
	validator := p.validators[event.FeedID]

	findings := validator.ValidateProduct(event.ProductID, feedmap.Normalize(event.Attributes), event.DisplayTitle)
	acc.Append(findings)
	return nil
}

func (p *FeedEventProcessor) complete(event FeedEvent) error {
	acc, ok := p.accumulators[event.FeedID]
	if !ok {
		return fmt.Errorf("feed %d completed without a started run", event.FeedID)
	}
	delete(p.accumulators, event.FeedID)
	delete(p.validators, event.FeedID)

	findings, summary := acc.Finalize()
	store := results.NewStore(event.FeedID, p.meta, p.logger)
	if err := store.SaveResults(findings, summary); err != nil {
		return fmt.Errorf("finalize feed %d: %w", event.FeedID, err)
	}
	p.logger.Info("Feed %d: saved %d findings (%d found)", event.FeedID, len(findings), summary.TotalIssuesFound)
	return nil
}
