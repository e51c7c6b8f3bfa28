package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/criticdev/gh-critic/internal/core"
)

// rawPullRequest mirrors the fields requested from gh pr view --json.
type rawPullRequest struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Number int       `json:"number"`
	URL    string    `json:"url"`
	Files  []rawFile `json:"files"`
}

type rawFile struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// Fetcher retrieves pull request metadata and diff text via gh.
type Fetcher struct {
	runner Runner
	logger *slog.Logger
}

// NewFetcher creates a Fetcher backed by the given Runner.
func NewFetcher(runner Runner, logger *slog.Logger) *Fetcher {
	return &Fetcher{runner: runner, logger: logger}
}

// FetchPullRequest gathers everything the review needs about a PR in
// two gh calls: one pr view for metadata plus the changed-file list,
// and one pr diff for the full diff text. No local state is mutated.
func (f *Fetcher) FetchPullRequest(ctx context.Context, ref core.PullRequestRef) (*core.PullRequestData, error) {
	f.logger.Info("fetching pull request data", "pr", ref.String())

	number := strconv.Itoa(ref.Number)

	viewOut, err := f.runner.Run(ctx,
		"pr", "view", number,
		"--repo", ref.FullName(),
		"--json", "title,body,number,url,files",
	)
	if err != nil {
		return nil, classifyError(err)
	}

	var raw rawPullRequest
	if err := json.Unmarshal([]byte(viewOut), &raw); err != nil {
		return nil, fmt.Errorf("parsing pr view output: %w", err)
	}

	diff, err := f.runner.Run(ctx, "pr", "diff", number, "--repo", ref.FullName())
	if err != nil {
		return nil, classifyError(err)
	}

	files := make([]core.ChangedFile, 0, len(raw.Files))
	for _, rf := range raw.Files {
		// A file record without a path keeps an empty placeholder
		// instead of failing the fetch.
		files = append(files, core.ChangedFile{
			Path:      rf.Path,
			Status:    rf.Status,
			Additions: rf.Additions,
			Deletions: rf.Deletions,
		})
	}

	f.logger.Debug("pull request data fetched",
		"pr", ref.String(), "files", len(files), "diff_bytes", len(diff))

	return &core.PullRequestData{
		Title:       raw.Title,
		Description: raw.Body,
		Diff:        diff,
		Files:       files,
	}, nil
}
