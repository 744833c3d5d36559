package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bull/repo-rag/internal/service"
)

type stubService struct{}

func (stubService) IngestRepository(context.Context, string, string) (*service.IngestResponse, error) {
	return &service.IngestResponse{}, nil
}

func (stubService) Query(context.Context, string, int) (*service.QueryResponse, error) {
	return &service.QueryResponse{}, nil
}

func (stubService) StoreDocument(context.Context, string, string) (*service.DocumentResponse, error) {
	return &service.DocumentResponse{}, nil
}

func (stubService) DeleteCollection(context.Context) (*service.MessageResponse, error) {
	return &service.MessageResponse{}, nil
}

type healthy struct{}

func (healthy) Health(context.Context) error { return nil }

func TestRoutes(t *testing.T) {
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	mux := routes(stubService{}, healthy{}, mcpHandler, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/mcp", http.StatusAccepted},
		{http.MethodDelete, "/collection", http.StatusOK},
		{http.MethodGet, "/query", http.StatusMethodNotAllowed},
		{http.MethodGet, "/repositories", http.StatusMethodNotAllowed},
		{http.MethodGet, "/collection", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
