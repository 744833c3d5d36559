package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/repo-rag/internal/document"
	"github.com/bull/repo-rag/internal/indexer"
	"github.com/bull/repo-rag/internal/rag"
	"github.com/bull/repo-rag/internal/storage"
)

type fakeIngester struct {
	result *indexer.IngestResult
	err    error
	branch string
}

func (f *fakeIngester) Ingest(_ context.Context, _, branch string) (*indexer.IngestResult, error) {
	f.branch = branch
	return f.result, f.err
}

type fakeQuerier struct {
	answer *rag.Answer
	err    error
}

func (f *fakeQuerier) Query(_ context.Context, question string, _ int) (*rag.Answer, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := *f.answer
	a.Question = question
	return &a, nil
}

type fakeDocuments struct {
	result *document.Result
	err    error
}

func (f *fakeDocuments) StoreFile(context.Context, string, string) (*document.Result, error) {
	return f.result, f.err
}

type constEmbedder struct{}

func (constEmbedder) EmbedOne(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type failingDrop struct {
	*indexer.Sink
}

func (failingDrop) Drop(context.Context) error { return errors.New("qdrant down") }

func newService(d Deps) *Service {
	if d.Collection == nil {
		d.Collection = indexer.NewSink(storage.NewMemoryStore(), constEmbedder{}, "document_collection", nil)
	}
	return New(d, nil)
}

func TestIngestRepository(t *testing.T) {
	ing := &fakeIngester{result: &indexer.IngestResult{
		RepoName: "demo", Branch: "main", FilesProcessed: 2, RepoSummary: "A demo.",
	}}
	svc := newService(Deps{Ingester: ing})

	resp, err := svc.IngestRepository(context.Background(), "https://github.com/acme/demo.git", "")
	require.NoError(t, err)

	assert.Equal(t, &IngestResponse{
		Message:        "Repository ingestion completed",
		RepoURL:        "https://github.com/acme/demo.git",
		Branch:         "main",
		RepoName:       "demo",
		FilesProcessed: 2,
		RepoSummary:    "A demo.",
	}, resp)
	assert.Equal(t, "main", ing.branch)
}

func TestIngestRepository_BranchPassThrough(t *testing.T) {
	for _, branch := range []string{"develop", "default"} {
		ing := &fakeIngester{result: &indexer.IngestResult{RepoName: "demo", Branch: branch}}
		svc := newService(Deps{Ingester: ing})

		_, err := svc.IngestRepository(context.Background(), "https://github.com/acme/demo.git", branch)
		require.NoError(t, err)

		assert.Equal(t, branch, ing.branch)
	}
}

func TestIngestRepository_Errors(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		err     error
		status  int
		message string
	}{
		{"empty url", " ", nil, http.StatusBadRequest, "repo_url is required"},
		{"clone failure", "https://github.com/acme/demo.git", fmt.Errorf("%w: demo (branch x)", indexer.ErrFetchFailed), http.StatusInternalServerError, "Failed to clone repository: demo"},
		{"scratch failure", "https://github.com/acme/demo", fmt.Errorf("%w: disk full", indexer.ErrScratchDir), http.StatusInternalServerError, "Internal server error during repository ingestion: failed to create scratch directory: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(Deps{Ingester: &fakeIngester{err: tt.err}})

			_, err := svc.IngestRepository(context.Background(), tt.url, "main")

			require.Error(t, err)
			assert.Equal(t, tt.status, StatusOf(err))
			assert.Equal(t, tt.message, MessageOf(err))
		})
	}
}

func TestQuery(t *testing.T) {
	svc := newService(Deps{Querier: &fakeQuerier{answer: &rag.Answer{Answer: "Oui.", RawResults: []string{"a", "b"}}}})

	resp, err := svc.Query(context.Background(), "Pourquoi ?", 2)
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Pourquoi ?", resp.Question)
	assert.Equal(t, "Oui.", resp.Answer)
	assert.Equal(t, []string{"a", "b"}, resp.RawResults)
}

func TestQuery_Errors(t *testing.T) {
	svc := newService(Deps{Querier: &fakeQuerier{err: errors.New("embed failed")}})

	_, err := svc.Query(context.Background(), "", 5)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	_, err = svc.Query(context.Background(), "question", 5)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "Internal server error", MessageOf(err))
	assert.ErrorContains(t, err, "embed failed")
}

func TestQuery_NoResultsIsEmptySlice(t *testing.T) {
	svc := newService(Deps{Querier: &fakeQuerier{answer: &rag.Answer{Answer: "Rien."}}})

	resp, err := svc.Query(context.Background(), "q", 1)
	require.NoError(t, err)

	assert.NotNil(t, resp.RawResults)
	assert.Empty(t, resp.RawResults)
}

func TestStoreDocument(t *testing.T) {
	svc := newService(Deps{Documents: &fakeDocuments{result: &document.Result{Chunks: 4, Validation: "Supported type: text/plain; charset=utf-8"}}})

	resp, err := svc.StoreDocument(context.Background(), "notes.txt", "/tmp/upload")
	require.NoError(t, err)

	assert.Equal(t, &DocumentResponse{Status: "ok", Filename: "notes.txt", Chunks: 4, Validation: "Supported type: text/plain; charset=utf-8"}, resp)
}

func TestStoreDocument_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		err      error
		status   int
		message  string
	}{
		{"no name", "", nil, http.StatusBadRequest, "File without a name"},
		{"empty", "a.txt", document.ErrEmptyFile, http.StatusBadRequest, "Empty file"},
		{"binary", "a.bin", fmt.Errorf("%w: application/octet-stream", document.ErrUnsupportedType), http.StatusBadRequest, "Unsupported file type: application/octet-stream"},
		{"other", "a.txt", errors.New("disk"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(Deps{Documents: &fakeDocuments{err: tt.err}})

			_, err := svc.StoreDocument(context.Background(), tt.filename, "/tmp/x")

			assert.Equal(t, tt.status, StatusOf(err))
			assert.Equal(t, tt.message, MessageOf(err))
		})
	}
}

func TestDeleteCollection(t *testing.T) {
	svc := newService(Deps{})

	resp, err := svc.DeleteCollection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Collection 'document_collection' scheduled for deletion.", resp.Message)

	sink := indexer.NewSink(storage.NewMemoryStore(), constEmbedder{}, "docs", nil)
	svc = newService(Deps{Collection: failingDrop{sink}})
	_, err = svc.DeleteCollection(context.Background())
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "Failed to delete collection 'docs'", MessageOf(err))
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	sink := indexer.NewSink(storage.NewMemoryStore(), constEmbedder{}, "docs", nil)
	svc := newService(Deps{Collection: sink})

	resp, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Healthy)
	assert.False(t, resp.Exists)

	require.Equal(t, 1, sink.Store(ctx, []string{"x"}, []storage.Metadata{{}}))

	resp, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Exists)
	assert.Equal(t, uint64(2), resp.Dimension)
	assert.Equal(t, uint64(1), resp.PointsCount)
}

func TestStatusOf_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
	assert.Equal(t, "Internal server error", MessageOf(errors.New("x")))
}
