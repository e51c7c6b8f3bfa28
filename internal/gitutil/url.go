// Package gitutil contains helpers for working with GitHub URLs.
package gitutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/criticdev/gh-critic/internal/core"
)

// ErrInvalidURL is returned when a string does not look like a GitHub
// pull request URL.
var ErrInvalidURL = errors.New("invalid pull request URL")

var prURLRegex = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)

// ParsePullRequestURL extracts the owner, repo, and PR number from a URL.
// Supported format: https://github.com/{owner}/{repo}/pull/{number}
func ParsePullRequestURL(url string) (core.PullRequestRef, error) {
	url = strings.TrimSuffix(url, "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if len(matches) != 4 {
		return core.PullRequestRef{}, fmt.Errorf("%w: %s (expected https://github.com/owner/repo/pull/123)", ErrInvalidURL, url)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return core.PullRequestRef{}, fmt.Errorf("%w: PR number %q must be a positive integer", ErrInvalidURL, matches[3])
	}

	return core.PullRequestRef{
		Owner:  matches[1],
		Repo:   matches[2],
		Number: number,
	}, nil
}
