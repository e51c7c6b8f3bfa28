// Package core defines the shared data model passed between pipeline stages.
package core

import "fmt"

// PullRequestRef identifies a single pull request on GitHub.
// It is immutable once parsed from a URL.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// FullName returns the repository identity in "owner/repo" form,
// the shape the gh CLI expects for its --repo flag.
func (r PullRequestRef) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", r.FullName(), r.Number)
}

// ChangedFile holds one file touched by a pull request. A file record
// missing its path in the gh payload keeps an empty Path rather than
// failing the fetch.
type ChangedFile struct {
	Path      string
	Status    string
	Additions int
	Deletions int
}

// PullRequestData is everything the review generator needs about a PR.
// It is constructed once per run by the fetcher and read-only afterwards.
type PullRequestData struct {
	Title       string
	Description string
	Diff        string
	Files       []ChangedFile
}

// ReviewSource records whether a review came from the cache or from a
// fresh model call.
type ReviewSource string

const (
	SourceCache     ReviewSource = "cache"
	SourceGenerated ReviewSource = "generated"
)

// ReviewResult is the outcome of one pipeline run.
type ReviewResult struct {
	Text   string
	Source ReviewSource
}
