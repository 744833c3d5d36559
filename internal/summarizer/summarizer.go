// Package summarizer produces LLM synopses of files and whole repositories.
//
// Both operations are best-effort: an LLM failure never surfaces as an error,
// it is logged and replaced with a sentinel string naming what failed.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxTokens is the maximum content length before truncation (in tokens).
const DefaultMaxTokens = 16000

// Completer is the LLM completion capability.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NamedAnalysis pairs a file path with its serialized FileAnalysis JSON.
type NamedAnalysis struct {
	Path string
	JSON string
}

// Summarizer produces file and repository summaries. Files and repositories
// may use different models.
type Summarizer struct {
	fileLLM   Completer
	repoLLM   Completer
	maxTokens int
	logger    *slog.Logger
}

// New creates a Summarizer. A non-positive maxTokens selects DefaultMaxTokens.
func New(fileLLM, repoLLM Completer, maxTokens int, logger *slog.Logger) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		fileLLM:   fileLLM,
		repoLLM:   repoLLM,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// FileFailure returns the sentinel summary used when a file cannot be summarized.
func FileFailure(path string) string {
	return fmt.Sprintf("Error: LLM analysis failed for file %s.", path)
}

// RepositoryFailure returns the sentinel summary used when a repository cannot be summarized.
func RepositoryFailure(repoName string) string {
	return fmt.Sprintf("Error: LLM summary generation failed for repository %s.", repoName)
}

// SummarizeFile asks the file model for a synopsis of one file.
func (s *Summarizer) SummarizeFile(ctx context.Context, content, path string) string {
	prompt := fmt.Sprintf("Analyze the following file content from '%s' and provide a concise summary of its purpose, functionality, and key components: \n\n%s\n\nAnalysis:",
		path, s.truncateContent(path, content))

	resp, err := s.fileLLM.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("LLM invocation failed for file summary", "path", path, "error", err)
		return FileFailure(path)
	}
	return strings.TrimSpace(resp)
}

// SummarizeRepository condenses per-file summaries, in the given order, into
// one repository synopsis.
func (s *Summarizer) SummarizeRepository(ctx context.Context, analyses []NamedAnalysis, repoName string) string {
	blocks := make([]string, 0, len(analyses))
	for _, a := range analyses {
		blocks = append(blocks, fmt.Sprintf("File: %s\nSummary: %s", a.Path, s.extractSummary(a)))
	}

	prompt := fmt.Sprintf("The following are file summaries from the repository '%s':\n\n%s\n\nProvide a concise overall summary of the repository's purpose and architecture based on these file summaries.\n\nOverall Repository Summary:",
		repoName, strings.Join(blocks, "\n\n"))

	resp, err := s.repoLLM.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("LLM invocation failed for repository summary", "repo", repoName, "error", err)
		return RepositoryFailure(repoName)
	}
	return strings.TrimSpace(resp)
}

func (s *Summarizer) extractSummary(a NamedAnalysis) string {
	var parsed struct {
		Summary *string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(a.JSON), &parsed); err != nil {
		s.logger.Warn("Could not parse analysis JSON", "path", a.Path, "raw", preview(a.JSON, 100), "error", err)
		return "Could not parse analysis data."
	}
	if parsed.Summary == nil {
		return fmt.Sprintf("Summary not available for %s", a.Path)
	}
	return *parsed.Summary
}

// truncateContent truncates content to fit within token limits.
// Uses rough estimate of 4 characters per token.
func (s *Summarizer) truncateContent(path, content string) string {
	maxChars := s.maxTokens * 4

	if len(content) <= maxChars {
		return content
	}

	s.logger.Warn("Truncating content before summarization",
		"path", path, "from_chars", len(content), "to_chars", maxChars, "max_tokens", s.maxTokens)

	cut := maxChars
	// Back off to a rune boundary.
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
