// Package indexer turns a remote repository into searchable points: it
// clones, walks, analyzes and summarizes every file, then stores one point
// per file plus one repository summary.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bull/repo-rag/internal/analyzer"
	"github.com/bull/repo-rag/internal/metrics"
	"github.com/bull/repo-rag/internal/source"
	"github.com/bull/repo-rag/internal/storage"
	"github.com/bull/repo-rag/internal/summarizer"
	"github.com/bull/repo-rag/internal/walker"
)

// IngestResult contains statistics about an ingestion run.
type IngestResult struct {
	RepoName       string
	Branch         string
	FilesProcessed int
	RepoSummary    string
	// Analyses holds every produced analysis in walk order.
	Analyses     []summarizer.NamedAnalysis
	StoredPoints int
	FailedFiles  []FailedFile
	SkippedFiles []string
	Duration     time.Duration
}

// FailedFile is a file whose analysis was produced but degraded or not stored.
type FailedFile struct {
	Path   string
	Reason string
}

// FileOutcome is the result of processing one admitted file.
type FileOutcome struct {
	Path     string
	Analysis string
	Stored   int
	Failure  string
	Skipped  bool
}

// Fetcher resolves branches and clones repositories.
type Fetcher interface {
	ResolveBranch(ctx context.Context, repoURL, branch string) string
	Clone(ctx context.Context, repoURL, branch, dest string) bool
}

// Config tunes a Pipeline. The zero value is valid.
type Config struct {
	// Workers bounds concurrent file processing. Values below 2 mean sequential.
	Workers int
	// MaxFileBytes skips files larger than this. Zero disables the cap.
	MaxFileBytes int64
	// ScratchRoot is the parent of per-run scratch directories. Empty means os.TempDir.
	ScratchRoot string
	// Policy filters walked files. Nil selects walker.DefaultPolicy.
	Policy *walker.Policy
}

// Pipeline orchestrates ingestion from clone to storage.
type Pipeline struct {
	fetcher    Fetcher
	summarizer *summarizer.Summarizer
	sink       *Sink
	cfg        Config
	logger     *slog.Logger
}

// NewPipeline creates a new ingestion pipeline with the given components.
func NewPipeline(fetcher Fetcher, sum *summarizer.Summarizer, sink *Sink, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Policy == nil {
		policy := walker.DefaultPolicy()
		cfg.Policy = &policy
	}
	return &Pipeline{
		fetcher:    fetcher,
		summarizer: sum,
		sink:       sink,
		cfg:        cfg,
		logger:     logger,
	}
}

// Ingest clones repoURL at branch into a scratch directory and indexes it.
// An empty branch is resolved by the fetcher. Only scratch-directory and
// clone failures are returned as errors; per-file problems are collected in
// the result. The scratch directory is removed before Ingest returns.
func (p *Pipeline) Ingest(ctx context.Context, repoURL, branch string) (*IngestResult, error) {
	start := time.Now()
	repoName := source.RepoName(repoURL)
	branch = p.fetcher.ResolveBranch(ctx, repoURL, branch)

	scratch, err := os.MkdirTemp(p.cfg.ScratchRoot, "repo-rag-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScratchDir, err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			p.logger.Warn("Failed to remove scratch directory", "path", scratch, "error", err)
		}
	}()

	p.logger.Info("Starting ingestion", "repo", repoName, "url", repoURL, "branch", branch)

	if !p.fetcher.Clone(ctx, repoURL, branch, scratch) {
		return nil, fmt.Errorf("%w: %s (branch %s)", ErrFetchFailed, repoName, branch)
	}

	var entries []walker.Entry
	for entry, err := range walker.Walk(scratch, *p.cfg.Policy) {
		if err != nil {
			p.logger.Warn("Walk error, continuing", "repo", repoName, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	p.logger.Info("Found files", "repo", repoName, "count", len(entries))

	outcomes := make([]FileOutcome, len(entries))
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = p.processFile(ctx, repoName, entry)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", repoName, err)
	}

	result := &IngestResult{RepoName: repoName, Branch: branch}
	for _, o := range outcomes {
		if o.Skipped {
			result.SkippedFiles = append(result.SkippedFiles, o.Path)
			continue
		}
		result.Analyses = append(result.Analyses, summarizer.NamedAnalysis{Path: o.Path, JSON: o.Analysis})
		result.StoredPoints += o.Stored
		if o.Failure != "" {
			result.FailedFiles = append(result.FailedFiles, FailedFile{Path: o.Path, Reason: o.Failure})
		}
	}
	result.FilesProcessed = len(result.Analyses)

	result.RepoSummary = p.summarizer.SummarizeRepository(ctx, result.Analyses, repoName)
	if result.RepoSummary == summarizer.RepositoryFailure(repoName) {
		metrics.SummaryFailed()
	}

	stored := p.sink.Store(ctx,
		[]string{result.RepoSummary},
		[]storage.Metadata{{
			storage.MetaRepoName:  repoName,
			storage.MetaIsSummary: true,
		}},
	)
	if stored == 0 {
		p.logger.Warn("Repository summary was not stored", "repo", repoName)
	}
	result.StoredPoints += stored

	result.Duration = time.Since(start)
	metrics.ObserveIngest(result.Duration)
	p.logger.Info("Ingestion complete",
		"repo", repoName,
		"files", result.FilesProcessed,
		"skipped", len(result.SkippedFiles),
		"failed", len(result.FailedFiles),
		"points", result.StoredPoints,
		"duration", result.Duration,
	)

	return result, nil
}

// processFile handles the full pipeline for a single file.
func (p *Pipeline) processFile(ctx context.Context, repoName string, entry walker.Entry) FileOutcome {
	outcome := FileOutcome{Path: entry.RelPath}

	content, err := walker.ReadText(entry.AbsPath, p.cfg.MaxFileBytes)
	if err != nil {
		if errors.Is(err, walker.ErrNotText) || errors.Is(err, walker.ErrTooLarge) {
			p.logger.Info("Skipping file", "path", entry.RelPath, "reason", err)
		} else {
			p.logger.Warn("Could not read file, skipping", "path", entry.RelPath, "error", err)
		}
		metrics.FileSkipped()
		outcome.Skipped = true
		return outcome
	}

	analysis := analyzer.Analyze(entry.RelPath, content)
	analysis.Summary = p.summarizer.SummarizeFile(ctx, content, entry.RelPath)
	if analysis.Summary == summarizer.FileFailure(entry.RelPath) {
		metrics.SummaryFailed()
		outcome.Failure = "summary generation failed"
	}

	encoded, err := analysis.JSON()
	if err != nil {
		p.logger.Error("Failed to encode analysis", "path", entry.RelPath, "error", err)
		outcome.Skipped = true
		return outcome
	}
	outcome.Analysis = encoded
	metrics.FileProcessed()

	outcome.Stored = p.sink.Store(ctx,
		[]string{encoded},
		[]storage.Metadata{{
			storage.MetaRepoName:         repoName,
			storage.MetaFilePath:         entry.RelPath,
			storage.MetaOriginalFilePath: entry.AbsPath,
			storage.MetaIsSummary:        false,
			storage.MetaLanguage:         analysis.Language,
		}},
	)
	if outcome.Stored == 0 && outcome.Failure == "" {
		p.logger.Warn("Analysis was not stored", "path", entry.RelPath, "repo", repoName)
		outcome.Failure = "analysis not stored"
	}

	p.logger.Debug("Processed file", "path", entry.RelPath, "language", analysis.Language, "stored", outcome.Stored)
	return outcome
}
