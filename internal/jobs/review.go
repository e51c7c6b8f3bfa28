// Package jobs sequences the review pipeline:
// fetch -> cache lookup -> generate -> cache write -> publish.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/criticdev/gh-critic/internal/cache"
	"github.com/criticdev/gh-critic/internal/core"
)

// Fetcher retrieves pull request data.
type Fetcher interface {
	FetchPullRequest(ctx context.Context, ref core.PullRequestRef) (*core.PullRequestData, error)
}

// Generator produces a review for a pull request and knows which model
// it generates with, since the model identifier is part of the cache key.
type Generator interface {
	GenerateReview(ctx context.Context, ref core.PullRequestRef, data *core.PullRequestData) (string, error)
	Model() string
}

// Publisher posts the review back to the pull request.
type Publisher interface {
	PostComment(ctx context.Context, ref core.PullRequestRef, body string) error
}

// Store is the cache surface the pipeline needs.
type Store interface {
	Get(key string) (*cache.Entry, bool)
	Put(key, review string) error
}

// Options control a single pipeline run.
type Options struct {
	// NoCache forces a fresh model call even when a matching entry
	// exists; the fresh result overwrites that entry.
	NoCache bool
	// DryRun skips the external post; the review is only returned.
	DryRun bool
}

// ReviewJob runs the review pipeline for one pull request.
type ReviewJob struct {
	fetcher   Fetcher
	store     Store
	generator Generator
	publisher Publisher
	logger    *slog.Logger
}

// NewReviewJob wires the pipeline stages together.
func NewReviewJob(fetcher Fetcher, store Store, generator Generator, publisher Publisher, logger *slog.Logger) *ReviewJob {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if store == nil {
		panic("cache store cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	return &ReviewJob{
		fetcher:   fetcher,
		store:     store,
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

// Run executes the pipeline for ref and returns the review. Any stage
// failure aborts the run, except a cache write failure, which is logged
// and skipped: the in-memory review is still returned and published.
func (j *ReviewJob) Run(ctx context.Context, ref core.PullRequestRef, opts Options) (*core.ReviewResult, error) {
	data, err := j.fetcher.FetchPullRequest(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request %s: %w", ref.String(), err)
	}

	key := cache.Key(ref.FullName(), j.generator.Model(), data.Diff)

	result := &core.ReviewResult{Source: core.SourceGenerated}
	if !opts.NoCache {
		if entry, ok := j.store.Get(key); ok {
			j.logger.Info("using cached review", "pr", ref.String(), "key", key)
			result = &core.ReviewResult{Text: entry.Review, Source: core.SourceCache}
		}
	}

	if result.Source == core.SourceGenerated {
		review, err := j.generator.GenerateReview(ctx, ref, data)
		if err != nil {
			return nil, fmt.Errorf("generating review for %s: %w", ref.String(), err)
		}
		result.Text = review

		// Best effort: a failed write must not cost us the review.
		if err := j.store.Put(key, review); err != nil {
			j.logger.Warn("failed to cache review, continuing", "pr", ref.String(), "error", err)
		}
	}

	if opts.DryRun {
		j.logger.Info("dry run, review not posted", "pr", ref.String())
		return result, nil
	}

	if err := j.publisher.PostComment(ctx, ref, result.Text); err != nil {
		return nil, err
	}
	return result, nil
}
