package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotGitHub is returned for URLs that do not point at github.com.
var ErrNotGitHub = errors.New("not a github.com repository URL")

// Resolver looks up default branches of github.com repositories.
type Resolver struct {
	client *Client
}

// NewResolver creates a resolver backed by client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// DefaultBranch returns the default branch of the repository at repoURL.
func (r *Resolver) DefaultBranch(ctx context.Context, repoURL string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}

	repository, _, err := r.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}

	branch := repository.GetDefaultBranch()
	if branch == "" {
		return "", fmt.Errorf("repository %s/%s has no default branch", owner, repo)
	}
	return branch, nil
}

// ParseRepoURL extracts owner and repository name from https or scp-style
// github.com URLs.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	var path string
	switch {
	case strings.HasPrefix(repoURL, "git@github.com:"):
		path = strings.TrimPrefix(repoURL, "git@github.com:")
	default:
		u, perr := url.Parse(repoURL)
		if perr != nil || !strings.EqualFold(u.Hostname(), "github.com") {
			return "", "", fmt.Errorf("%w: %s", ErrNotGitHub, repoURL)
		}
		path = u.Path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrNotGitHub, repoURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
