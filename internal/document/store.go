// Package document indexes standalone text documents into the vector store.
package document

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bull/repo-rag/internal/indexer"
	"github.com/bull/repo-rag/internal/markdown"
	"github.com/bull/repo-rag/internal/storage"
)

// Result describes one stored document.
type Result struct {
	Chunks     int
	Validation string
}

// Store windows documents and writes them through the indexing sink.
type Store struct {
	sink      *indexer.Sink
	splitter  *Splitter
	sectioner *markdown.Sectioner
	logger    *slog.Logger
}

// NewStore creates a document store. A nil splitter selects DefaultSplitter.
func NewStore(sink *indexer.Sink, splitter *Splitter, logger *slog.Logger) *Store {
	if splitter == nil {
		splitter = DefaultSplitter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sink:      sink,
		splitter:  splitter,
		sectioner: markdown.NewSectioner(),
		logger:    logger,
	}
}

// Validate checks that data is non-empty UTF-8 text and describes its type.
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "text/") || !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	return "Supported type: " + mime, nil
}

// StoreFile reads path and indexes its windows with source set to name.
// An empty name falls back to the base name of path. Markdown files are
// first sectioned at H1/H2 headings and each window records its header path.
func (s *Store) StoreFile(ctx context.Context, path, name string) (*Result, error) {
	if name == "" {
		name = filepath.Base(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	validation, err := Validate(data)
	if err != nil {
		s.logger.Warn("Validation failed", "file", name, "error", err)
		return nil, err
	}

	texts, metas, err := s.windows(name, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Split document", "file", name, "windows", len(texts))

	if len(texts) == 0 {
		s.logger.Warn("No valid chunks to index", "file", name)
		return &Result{Validation: validation}, nil
	}

	stored := s.sink.Store(ctx, texts, metas)
	s.logger.Info("Stored document", "file", name, "chunks", stored)

	return &Result{Chunks: stored, Validation: validation}, nil
}

func (s *Store) windows(name string, data []byte) ([]string, []storage.Metadata, error) {
	var texts []string
	var metas []storage.Metadata

	add := func(headerPath, body string) {
		for _, w := range s.splitter.Split(body) {
			if strings.TrimSpace(w) == "" {
				continue
			}
			meta := storage.Metadata{
				storage.MetaSource:     name,
				storage.MetaChunkIndex: len(texts),
				storage.MetaIsSummary:  false,
			}
			if headerPath != "" {
				meta[storage.MetaHeaderPath] = headerPath
			}
			texts = append(texts, w)
			metas = append(metas, meta)
		}
	}

	if !isMarkdown(name) {
		add("", string(data))
		return texts, metas, nil
	}

	sections, err := s.sectioner.Split(data)
	if err != nil {
		return nil, nil, fmt.Errorf("section %s: %w", name, err)
	}
	for _, section := range sections {
		add(section.HeaderPath, section.Content)
	}
	return texts, metas, nil
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
