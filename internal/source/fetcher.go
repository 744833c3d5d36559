// Package source materializes remote repositories into local scratch directories.
package source

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
)

const (
	// DefaultBranch is cloned when no branch is given.
	DefaultBranch = "main"

	// RemoteDefault asks the resolver for the repository's own default
	// branch, falling back to DefaultBranch.
	RemoteDefault = "default"
)

// BranchResolver looks up the default branch of a remote repository.
type BranchResolver interface {
	DefaultBranch(ctx context.Context, repoURL string) (string, error)
}

// Fetcher performs shallow single-branch clones with the git binary.
type Fetcher struct {
	gitBinary string
	resolver  BranchResolver
	logger    *slog.Logger
}

// NewFetcher creates a fetcher. An empty gitBinary means "git" from PATH.
// resolver may be nil.
func NewFetcher(gitBinary string, resolver BranchResolver, logger *slog.Logger) *Fetcher {
	if gitBinary == "" {
		gitBinary = "git"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		gitBinary: gitBinary,
		resolver:  resolver,
		logger:    logger,
	}
}

// ResolveBranch maps an empty branch to DefaultBranch. Only RemoteDefault
// consults the resolver; any other name is returned unchanged.
func (f *Fetcher) ResolveBranch(ctx context.Context, repoURL, branch string) string {
	switch branch {
	case "":
		return DefaultBranch
	case RemoteDefault:
	default:
		return branch
	}
	if f.resolver == nil {
		return DefaultBranch
	}
	resolved, err := f.resolver.DefaultBranch(ctx, repoURL)
	if err != nil || resolved == "" {
		f.logger.Debug("Default branch lookup failed, using fallback", "repo", repoURL, "fallback", DefaultBranch, "error", err)
		return DefaultBranch
	}
	return resolved
}

// Clone fetches branch of repoURL at depth 1 into dest, which must already
// exist and be empty. It never returns an error: every failure is logged
// with git's output and reported as false.
func (f *Fetcher) Clone(ctx context.Context, repoURL, branch, dest string) bool {
	args := []string{"clone", "--depth", "1", "--single-branch", "--branch", branch, repoURL, dest}
	f.logger.Info("Executing git command", "command", f.gitBinary+" "+strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, f.gitBinary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(err, exec.ErrNotFound):
			f.logger.Error("Git command not found, ensure git is installed and in PATH", "binary", f.gitBinary)
		case errors.As(err, &exitErr):
			f.logger.Error("Failed to clone repository",
				"repo", repoURL,
				"branch", branch,
				"exit_code", exitErr.ExitCode(),
				"output", strings.TrimSpace(string(output)),
			)
		default:
			f.logger.Error("Unexpected error during git clone", "repo", repoURL, "error", err)
		}
		return false
	}

	f.logger.Info("Cloned repository", "repo", repoURL, "branch", branch, "dest", dest)
	return true
}

// RepoName derives a repository name from its URL: the last path segment
// with any ".git" suffix removed.
func RepoName(repoURL string) string {
	trimmed := strings.TrimRight(repoURL, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}
