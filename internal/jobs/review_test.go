package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/criticdev/gh-critic/internal/cache"
	"github.com/criticdev/gh-critic/internal/core"
)

var jobTestRef = core.PullRequestRef{Owner: "acme", Repo: "widgets", Number: 42}

type fakeFetcher struct {
	data *core.PullRequestData
	err  error
}

func (f *fakeFetcher) FetchPullRequest(context.Context, core.PullRequestRef) (*core.PullRequestData, error) {
	return f.data, f.err
}

type fakeGenerator struct {
	review string
	err    error
	calls  int
}

func (g *fakeGenerator) GenerateReview(context.Context, core.PullRequestRef, *core.PullRequestData) (string, error) {
	g.calls++
	return g.review, g.err
}

func (g *fakeGenerator) Model() string { return "test-model" }

type fakePublisher struct {
	err   error
	calls int
	body  string
}

func (p *fakePublisher) PostComment(_ context.Context, _ core.PullRequestRef, body string) error {
	p.calls++
	p.body = body
	return p.err
}

// failingStore always misses and refuses writes.
type failingStore struct{}

func (failingStore) Get(string) (*cache.Entry, bool) { return nil, false }
func (failingStore) Put(string, string) error        { return errors.New("disk full") }

func newTestJob(t *testing.T, fetcher *fakeFetcher, store Store, gen *fakeGenerator, pub *fakePublisher) *ReviewJob {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewReviewJob(fetcher, store, gen, pub, logger)
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store, err := cache.NewStore(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func prData() *core.PullRequestData {
	return &core.PullRequestData{
		Title: "Add frobnicator",
		Diff:  "diff --git a/frob.go b/frob.go",
	}
}

func TestRunGeneratesCachesAndPosts(t *testing.T) {
	fetcher := &fakeFetcher{data: prData()}
	store := newTestStore(t)
	gen := &fakeGenerator{review: "fresh review"}
	pub := &fakePublisher{}

	job := newTestJob(t, fetcher, store, gen, pub)
	result, err := job.Run(context.Background(), jobTestRef, Options{})
	require.NoError(t, err)

	assert.Equal(t, "fresh review", result.Text)
	assert.Equal(t, core.SourceGenerated, result.Source)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, "fresh review", pub.body)

	key := cache.Key(jobTestRef.FullName(), "test-model", prData().Diff)
	entry, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "fresh review", entry.Review)
}

func TestRunTwiceHitsCacheOnce(t *testing.T) {
	fetcher := &fakeFetcher{data: prData()}
	store := newTestStore(t)
	gen := &fakeGenerator{review: "expensive review"}
	pub := &fakePublisher{}

	job := newTestJob(t, fetcher, store, gen, pub)

	first, err := job.Run(context.Background(), jobTestRef, Options{})
	require.NoError(t, err)
	assert.Equal(t, core.SourceGenerated, first.Source)

	second, err := job.Run(context.Background(), jobTestRef, Options{})
	require.NoError(t, err)
	assert.Equal(t, core.SourceCache, second.Source)
	assert.Equal(t, "expensive review", second.Text)

	assert.Equal(t, 1, gen.calls, "second run on an unchanged PR must not call the model")
	assert.Equal(t, 2, pub.calls)
}

func TestRunNoCacheForcesFreshCallAndOverwrites(t *testing.T) {
	fetcher := &fakeFetcher{data: prData()}
	store := newTestStore(t)
	pub := &fakePublisher{}

	key := cache.Key(jobTestRef.FullName(), "test-model", prData().Diff)
	require.NoError(t, store.Put(key, "stale review"))

	gen := &fakeGenerator{review: "fresh review"}
	job := newTestJob(t, fetcher, store, gen, pub)

	result, err := job.Run(context.Background(), jobTestRef, Options{NoCache: true})
	require.NoError(t, err)

	assert.Equal(t, core.SourceGenerated, result.Source)
	assert.Equal(t, "fresh review", result.Text)
	assert.Equal(t, 1, gen.calls)

	entry, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "fresh review", entry.Review, "no-cache run must overwrite the stale entry")
}

func TestRunDryRunNeverPosts(t *testing.T) {
	fetcher := &fakeFetcher{data: prData()}
	store := newTestStore(t)
	gen := &fakeGenerator{review: "review"}
	pub := &fakePublisher{}

	job := newTestJob(t, fetcher, store, gen, pub)
	result, err := job.Run(context.Background(), jobTestRef, Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, "review", result.Text)
	assert.Zero(t, pub.calls, "dry run must not trigger the external post call")
}

func TestRunCacheWriteFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{data: prData()}
	gen := &fakeGenerator{review: "review"}
	pub := &fakePublisher{}

	job := newTestJob(t, fetcher, failingStore{}, gen, pub)
	result, err := job.Run(context.Background(), jobTestRef, Options{})
	require.NoError(t, err, "a failed cache write must not abort the run")

	assert.Equal(t, "review", result.Text)
	assert.Equal(t, 1, pub.calls)
}

func TestRunStageFailuresAbort(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		gen     *fakeGenerator
		pub     *fakePublisher
	}{
		{
			name:    "Fetch failure",
			fetcher: &fakeFetcher{err: errors.New("pull request not found")},
			gen:     &fakeGenerator{review: "r"},
			pub:     &fakePublisher{},
		},
		{
			name:    "Generation failure",
			fetcher: &fakeFetcher{data: prData()},
			gen:     &fakeGenerator{err: errors.New("model API request failed")},
			pub:     &fakePublisher{},
		},
		{
			name:    "Publish failure",
			fetcher: &fakeFetcher{data: prData()},
			gen:     &fakeGenerator{review: "r"},
			pub:     &fakePublisher{err: errors.New("failed to post review comment")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := newTestJob(t, tt.fetcher, newTestStore(t), tt.gen, tt.pub)
			_, err := job.Run(context.Background(), jobTestRef, Options{})
			assert.Error(t, err)
		})
	}
}
