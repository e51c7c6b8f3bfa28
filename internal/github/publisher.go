package github

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/criticdev/gh-critic/internal/core"
)

// Publisher posts review text as a PR comment via gh.
type Publisher struct {
	runner Runner
	logger *slog.Logger
}

// NewPublisher creates a Publisher backed by the given Runner.
func NewPublisher(runner Runner, logger *slog.Logger) *Publisher {
	return &Publisher{runner: runner, logger: logger}
}

// PostComment publishes the review as a single comment on the PR.
// The body goes through a temporary file so arbitrary review content
// never hits the argument list. Posting is one atomic gh call: it
// succeeds or fails as a whole, there is no partial-post state.
func (p *Publisher) PostComment(ctx context.Context, ref core.PullRequestRef, body string) error {
	tmp, err := os.CreateTemp("", "gh-critic-review-*.md")
	if err != nil {
		return fmt.Errorf("%w: creating comment body file: %v", ErrPublish, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing comment body file: %v", ErrPublish, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing comment body file: %v", ErrPublish, err)
	}

	p.logger.Info("posting review comment", "pr", ref.String())

	_, err = p.runner.Run(ctx,
		"pr", "comment", strconv.Itoa(ref.Number),
		"--repo", ref.FullName(),
		"--body-file", tmp.Name(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, classifyError(err))
	}

	p.logger.Info("review comment posted", "pr", ref.String())
	return nil
}
