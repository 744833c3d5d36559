// Package api serves the repository index operations as a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/bull/repo-rag/internal/service"
)

// maxUploadBytes bounds multipart uploads to POST /files.
const maxUploadBytes = 32 << 20

// Service is the subset of *service.Service the routes call.
type Service interface {
	IngestRepository(ctx context.Context, repoURL, branch string) (*service.IngestResponse, error)
	Query(ctx context.Context, question string, k int) (*service.QueryResponse, error)
	StoreDocument(ctx context.Context, filename, path string) (*service.DocumentResponse, error)
	DeleteCollection(ctx context.Context) (*service.MessageResponse, error)
}

type ingestRequest struct {
	RepoURL string `json:"repo_url"`
	Branch  string `json:"branch"`
}

type queryRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type handler struct {
	svc    Service
	logger *slog.Logger
}

// Register mounts the API routes on mux.
func Register(mux *http.ServeMux, svc Service, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	mux.HandleFunc("POST /repositories", h.ingest)
	mux.HandleFunc("POST /query", h.query)
	mux.HandleFunc("POST /files", h.upload)
	mux.HandleFunc("DELETE /collection", h.deleteCollection)
}

func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.IngestRepository(r.Context(), req.RepoURL, req.Branch)
	h.respond(w, resp, err)
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Query(r.Context(), req.Question, req.K)
	h.respond(w, resp, err)
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Missing file field"})
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "repo-rag-upload-*")
	if err != nil {
		h.logger.Error("Failed to create upload file", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
		return
	}
	defer os.Remove(tmp.Name())

	_, copyErr := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		h.logger.Error("Failed to save upload", "filename", header.Filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
		return
	}

	resp, err := h.svc.StoreDocument(r.Context(), header.Filename, tmp.Name())
	h.respond(w, resp, err)
}

func (h *handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.DeleteCollection(r.Context())
	h.respond(w, resp, err)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *handler) respond(w http.ResponseWriter, body any, err error) {
	if err != nil {
		writeJSON(w, service.StatusOf(err), errorResponse{Detail: service.MessageOf(err)})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
