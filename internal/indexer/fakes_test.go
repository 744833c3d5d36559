package indexer

import (
	"context"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// hashEmbedder returns a deterministic vector derived from the text.
type hashEmbedder struct {
	dim     int
	failOn  string // texts containing this substring fail
	probeOK bool

	mu    sync.Mutex
	calls int
}

func (h *hashEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()

	if text == probeText && !h.probeOK {
		return nil, errors.New("probe unavailable")
	}
	if h.failOn != "" && strings.Contains(text, h.failOn) {
		return nil, errors.New("embedding service error")
	}

	f := fnv.New32a()
	_, _ = f.Write([]byte(text))
	seed := f.Sum32()
	vec := make([]float32, h.dim)
	for i := range vec {
		vec[i] = float32((seed>>uint(i%32))&0xff) + 1
	}
	return vec, nil
}

// scriptedLLM returns reply unless the prompt mentions a path in failFor.
type scriptedLLM struct {
	reply   string
	failFor []string

	mu      sync.Mutex
	prompts []string
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	for _, p := range s.failFor {
		if strings.Contains(prompt, "'"+p+"'") {
			return "", errors.New("model overloaded")
		}
	}
	return s.reply, nil
}

// dirFetcher "clones" by copying a fixed file set into dest.
type dirFetcher struct {
	files map[string]string
	fail  bool

	dest string
}

func (d *dirFetcher) ResolveBranch(_ context.Context, _, branch string) string {
	if branch == "" {
		return "main"
	}
	return branch
}

func (d *dirFetcher) Clone(_ context.Context, _, _, dest string) bool {
	d.dest = dest
	if d.fail {
		return false
	}
	for rel, content := range d.files {
		path := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return false
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return false
		}
	}
	return true
}
