package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/repo-rag/internal/service"
)

// Service is the subset of *service.Service the tools call.
type Service interface {
	IngestRepository(ctx context.Context, repoURL, branch string) (*service.IngestResponse, error)
	Query(ctx context.Context, question string, k int) (*service.QueryResponse, error)
	StoreDocument(ctx context.Context, filename, path string) (*service.DocumentResponse, error)
	DeleteCollection(ctx context.Context) (*service.MessageResponse, error)
	Status(ctx context.Context) (*service.StatusResponse, error)
}

// toolError keeps the caller-facing message and drops internal detail.
func toolError(err error) error {
	return errors.New(service.MessageOf(err))
}

// makeIngestHandler creates the ingest_repository tool handler.
func makeIngestHandler(svc Service) func(
	context.Context, *mcp.CallToolRequest, IngestRepositoryInput,
) (*mcp.CallToolResult, IngestRepositoryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IngestRepositoryInput) (
		*mcp.CallToolResult, IngestRepositoryOutput, error,
	) {
		resp, err := svc.IngestRepository(ctx, input.RepoURL, input.Branch)
		if err != nil {
			return nil, IngestRepositoryOutput{}, toolError(err)
		}
		return nil, IngestRepositoryOutput{
			Message:        resp.Message,
			RepoURL:        resp.RepoURL,
			Branch:         resp.Branch,
			RepoName:       resp.RepoName,
			FilesProcessed: resp.FilesProcessed,
			RepoSummary:    resp.RepoSummary,
		}, nil
	}
}

// makeQueryHandler creates the query_index tool handler.
func makeQueryHandler(svc Service) func(
	context.Context, *mcp.CallToolRequest, QueryIndexInput,
) (*mcp.CallToolResult, QueryIndexOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input QueryIndexInput) (
		*mcp.CallToolResult, QueryIndexOutput, error,
	) {
		resp, err := svc.Query(ctx, input.Question, input.K)
		if err != nil {
			return nil, QueryIndexOutput{}, toolError(err)
		}
		return nil, QueryIndexOutput{
			Question:   resp.Question,
			Answer:     resp.Answer,
			RawResults: resp.RawResults,
		}, nil
	}
}

// makeStoreHandler creates the store_document tool handler.
// The content is staged in a temporary file so it goes through the same
// validation as uploads.
func makeStoreHandler(svc Service) func(
	context.Context, *mcp.CallToolRequest, StoreDocumentInput,
) (*mcp.CallToolResult, StoreDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StoreDocumentInput) (
		*mcp.CallToolResult, StoreDocumentOutput, error,
	) {
		tmp, err := os.CreateTemp("", "repo-rag-doc-*")
		if err != nil {
			return nil, StoreDocumentOutput{}, fmt.Errorf("failed to stage document: %w", err)
		}
		defer os.Remove(tmp.Name())

		_, writeErr := tmp.WriteString(input.Content)
		if err := errors.Join(writeErr, tmp.Close()); err != nil {
			return nil, StoreDocumentOutput{}, fmt.Errorf("failed to stage document: %w", err)
		}

		resp, err := svc.StoreDocument(ctx, input.Filename, tmp.Name())
		if err != nil {
			return nil, StoreDocumentOutput{}, toolError(err)
		}
		return nil, StoreDocumentOutput{
			Filename:   resp.Filename,
			Chunks:     resp.Chunks,
			Validation: resp.Validation,
		}, nil
	}
}

// makeDeleteHandler creates the delete_collection tool handler.
func makeDeleteHandler(svc Service) func(
	context.Context, *mcp.CallToolRequest, DeleteCollectionInput,
) (*mcp.CallToolResult, DeleteCollectionOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteCollectionInput) (
		*mcp.CallToolResult, DeleteCollectionOutput, error,
	) {
		resp, err := svc.DeleteCollection(ctx)
		if err != nil {
			return nil, DeleteCollectionOutput{}, toolError(err)
		}
		return nil, DeleteCollectionOutput{Message: resp.Message}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(svc Service) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		resp, err := svc.Status(ctx)
		if err != nil {
			return nil, StatusOutput{}, toolError(err)
		}
		return nil, StatusOutput{
			Collection:  resp.Collection,
			Healthy:     resp.Healthy,
			Exists:      resp.Exists,
			Dimension:   resp.Dimension,
			PointsCount: resp.PointsCount,
		}, nil
	}
}
