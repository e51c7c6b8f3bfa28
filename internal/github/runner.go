// Package github fetches pull request data and posts review comments
// through the authenticated gh CLI. GitHub's API surface is never
// modeled here; gh is treated as an opaque process that returns PR JSON
// and diff text.
package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gh "github.com/cli/go-gh/v2"
)

var (
	// ErrNotAuthenticated is returned when gh reports it has no usable
	// credentials for github.com.
	ErrNotAuthenticated = errors.New("gh CLI is not authenticated")

	// ErrNotFound is returned when the pull request does not exist or
	// is not accessible with the current credentials.
	ErrNotFound = errors.New("pull request not found")

	// ErrPublish is returned when posting the review comment fails.
	ErrPublish = errors.New("failed to post review comment")
)

// Runner is the narrow seam over gh process invocation. Keeping it this
// small lets tests substitute canned output and would let a direct API
// client replace the CLI without touching pipeline logic.
//
// Run returns gh's stdout on success. On failure the error carries
// whatever gh printed to stderr.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CLIRunner executes the locally installed, authenticated gh binary.
type CLIRunner struct{}

// Run invokes gh with the given arguments via go-gh.
func (CLIRunner) Run(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := gh.ExecContext(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("running gh %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// classifyError maps gh's stderr chatter onto the error taxonomy.
// gh prints "gh auth login" hints when unauthenticated and GraphQL
// "Could not resolve" messages for missing or inaccessible PRs.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "gh auth login"),
		strings.Contains(msg, "not logged in"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "http 401"):
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	case strings.Contains(msg, "could not resolve"),
		strings.Contains(msg, "no pull requests found"),
		strings.Contains(msg, "not found"),
		strings.Contains(msg, "http 404"):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
