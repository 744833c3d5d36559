// Package service is the single entry point used by the HTTP API, the MCP
// tools and the CLI. It validates input, runs the core operations and
// translates failures into *Error values.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bull/repo-rag/internal/document"
	"github.com/bull/repo-rag/internal/indexer"
	"github.com/bull/repo-rag/internal/rag"
	"github.com/bull/repo-rag/internal/source"
	"github.com/bull/repo-rag/internal/storage"
)

// Ingester runs a repository ingestion.
type Ingester interface {
	Ingest(ctx context.Context, repoURL, branch string) (*indexer.IngestResult, error)
}

// Querier answers questions.
type Querier interface {
	Query(ctx context.Context, question string, k int) (*rag.Answer, error)
}

// DocumentStore indexes a single file.
type DocumentStore interface {
	StoreFile(ctx context.Context, path, name string) (*document.Result, error)
}

// Collection manages the target collection.
type Collection interface {
	Collection() string
	VectorStore() storage.VectorStore
	Drop(ctx context.Context) error
}

// Deps are the components a Service delegates to.
type Deps struct {
	Ingester   Ingester
	Querier    Querier
	Documents  DocumentStore
	Collection Collection
}

// Service exposes the repository index operations.
type Service struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{deps: deps, logger: logger}
}

type IngestResponse struct {
	Message        string `json:"message"`
	RepoURL        string `json:"repo_url"`
	Branch         string `json:"branch"`
	RepoName       string `json:"repo_name"`
	FilesProcessed int    `json:"files_processed"`
	RepoSummary    string `json:"repo_summary"`
}

type QueryResponse struct {
	Status     string   `json:"status"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	RawResults []string `json:"raw_results"`
}

type DocumentResponse struct {
	Status     string `json:"status"`
	Filename   string `json:"filename"`
	Chunks     int    `json:"chunks"`
	Validation string `json:"validation"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Collection  string `json:"collection"`
	Healthy     bool   `json:"healthy"`
	Exists      bool   `json:"exists"`
	Dimension   uint64 `json:"dimension"`
	PointsCount uint64 `json:"points_count"`
}

// IngestRepository clones and indexes repoURL. An empty branch means "main";
// source.RemoteDefault selects the repository's own default branch.
func (s *Service) IngestRepository(ctx context.Context, repoURL, branch string) (*IngestResponse, error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return nil, badRequest("repo_url is required", nil)
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = source.DefaultBranch
	}

	s.logger.Info("Starting ingestion", "repo_url", repoURL, "branch", branch)
	result, err := s.deps.Ingester.Ingest(ctx, repoURL, branch)
	if err != nil {
		s.logger.Error("Repository ingestion failed", "repo_url", repoURL, "branch", branch, "error", err)
		switch {
		case errors.Is(err, indexer.ErrFetchFailed):
			return nil, internal(fmt.Sprintf("Failed to clone repository: %s", source.RepoName(repoURL)), err)
		default:
			return nil, internal(fmt.Sprintf("Internal server error during repository ingestion: %v", err), err)
		}
	}

	return &IngestResponse{
		Message:        "Repository ingestion completed",
		RepoURL:        repoURL,
		Branch:         result.Branch,
		RepoName:       result.RepoName,
		FilesProcessed: result.FilesProcessed,
		RepoSummary:    result.RepoSummary,
	}, nil
}

// Query answers question from the k most similar indexed texts.
func (s *Service) Query(ctx context.Context, question string, k int) (*QueryResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, badRequest("question is required", nil)
	}

	answer, err := s.deps.Querier.Query(ctx, question, k)
	if err != nil {
		s.logger.Error("Error during search", "question", question, "error", err)
		return nil, internal("Internal server error", err)
	}

	raw := answer.RawResults
	if raw == nil {
		raw = []string{}
	}
	return &QueryResponse{
		Status:     "ok",
		Question:   question,
		Answer:     answer.Answer,
		RawResults: raw,
	}, nil
}

// StoreDocument indexes the file at path under filename.
func (s *Service) StoreDocument(ctx context.Context, filename, path string) (*DocumentResponse, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, badRequest("File without a name", nil)
	}

	result, err := s.deps.Documents.StoreFile(ctx, path, filename)
	if err != nil {
		if errors.Is(err, document.ErrEmptyFile) || errors.Is(err, document.ErrUnsupportedType) {
			s.logger.Warn("Validation failed", "filename", filename, "error", err)
			return nil, badRequest(validationMessage(err), err)
		}
		s.logger.Error("Error during processing", "filename", filename, "error", err)
		return nil, internal("Internal server error", err)
	}

	return &DocumentResponse{
		Status:     "ok",
		Filename:   filename,
		Chunks:     result.Chunks,
		Validation: result.Validation,
	}, nil
}

// DeleteCollection drops the target collection and everything in it.
func (s *Service) DeleteCollection(ctx context.Context) (*MessageResponse, error) {
	name := s.deps.Collection.Collection()
	if err := s.deps.Collection.Drop(ctx); err != nil {
		s.logger.Error("Failed to delete collection", "collection", name, "error", err)
		return nil, internal(fmt.Sprintf("Failed to delete collection '%s'", name), err)
	}
	s.logger.Info("Deleted collection", "collection", name)
	return &MessageResponse{Message: fmt.Sprintf("Collection '%s' scheduled for deletion.", name)}, nil
}

// Status reports store health and the target collection's shape.
func (s *Service) Status(ctx context.Context) (*StatusResponse, error) {
	store := s.deps.Collection.VectorStore()
	resp := &StatusResponse{Collection: s.deps.Collection.Collection()}

	if err := store.Health(ctx); err != nil {
		s.logger.Warn("Vector store unhealthy", "error", err)
		return resp, nil
	}
	resp.Healthy = true

	info, err := store.CollectionInfo(ctx, resp.Collection)
	if errors.Is(err, storage.ErrCollectionNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, internal("Failed to read collection status", err)
	}
	resp.Exists = true
	resp.Dimension = info.Dimension
	resp.PointsCount = info.PointsCount
	return resp, nil
}

// Health reports whether the vector store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.deps.Collection.VectorStore().Health(ctx)
}

func validationMessage(err error) string {
	if errors.Is(err, document.ErrEmptyFile) {
		return "Empty file"
	}
	return "Unsupported file type" + strings.TrimPrefix(err.Error(), document.ErrUnsupportedType.Error())
}
