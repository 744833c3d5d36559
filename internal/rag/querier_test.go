package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/repo-rag/internal/indexer"
	"github.com/bull/repo-rag/internal/storage"
)

// axisEmbedder maps "doc N" to a vector close to axis N and counts calls.
type axisEmbedder struct {
	calls int
}

func (a *axisEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	a.calls++
	vec := make([]float32, 10)
	for i := range vec {
		vec[i] = 0.01
	}
	var n int
	if _, err := fmt.Sscanf(text, "doc %d", &n); err == nil && n >= 0 && n < 10 {
		vec[n] = 1
	}
	return vec, nil
}

type recordingLLM struct {
	reply  string
	err    error
	prompt string
}

func (r *recordingLLM) Complete(_ context.Context, prompt string) (string, error) {
	r.prompt = prompt
	return r.reply, r.err
}

func seeded(t *testing.T, embedder *axisEmbedder) *indexer.Sink {
	t.Helper()
	sink := indexer.NewSink(storage.NewMemoryStore(), embedder, "docs", nil)
	texts := make([]string, 10)
	metas := make([]storage.Metadata, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("doc %d content", i)
		metas[i] = storage.Metadata{storage.MetaSource: fmt.Sprintf("f%d.txt", i)}
	}
	require.Equal(t, 10, sink.Store(context.Background(), texts, metas))
	return sink
}

func TestQuery_TopK(t *testing.T) {
	embedder := &axisEmbedder{}
	llm := &recordingLLM{reply: "  La réponse.\n"}
	q, err := NewQuerier(seeded(t, embedder), embedder, llm, 0, nil)
	require.NoError(t, err)

	answer, err := q.Query(context.Background(), "doc 3?", 3)
	require.NoError(t, err)

	assert.Equal(t, "doc 3?", answer.Question)
	assert.Equal(t, "La réponse.", answer.Answer)
	require.Len(t, answer.RawResults, 3)
	assert.Equal(t, "doc 3 content", answer.RawResults[0])
	assert.Equal(t, "f3.txt", answer.Sources[0].Metadata[storage.MetaSource])

	assert.Contains(t, llm.prompt, "doc 3 content\n\n")
	assert.True(t, strings.HasSuffix(llm.prompt, "en français :\n\ndoc 3?"))
}

func TestQuery_DefaultK(t *testing.T) {
	embedder := &axisEmbedder{}
	q, err := NewQuerier(seeded(t, embedder), embedder, &recordingLLM{reply: "ok"}, 0, nil)
	require.NoError(t, err)

	answer, err := q.Query(context.Background(), "anything", 0)
	require.NoError(t, err)

	assert.Len(t, answer.RawResults, 10)
}

func TestQuery_EmptyCollection(t *testing.T) {
	embedder := &axisEmbedder{}
	sink := indexer.NewSink(storage.NewMemoryStore(), embedder, "docs", nil)
	llm := &recordingLLM{reply: "Je ne sais pas."}
	q, err := NewQuerier(sink, embedder, llm, 0, nil)
	require.NoError(t, err)

	answer, err := q.Query(context.Background(), "question", 5)
	require.NoError(t, err)

	assert.Empty(t, answer.RawResults)
	assert.Equal(t, "Je ne sais pas.", answer.Answer)
	assert.NotEmpty(t, llm.prompt)
}

func TestQuery_CachesQuestionEmbedding(t *testing.T) {
	embedder := &axisEmbedder{}
	sink := seeded(t, embedder)
	q, err := NewQuerier(sink, embedder, &recordingLLM{reply: "ok"}, 4, nil)
	require.NoError(t, err)

	before := embedder.calls
	_, err = q.Query(context.Background(), "doc 1", 2)
	require.NoError(t, err)
	_, err = q.Query(context.Background(), "doc 1", 2)
	require.NoError(t, err)

	assert.Equal(t, before+1, embedder.calls)
}

func TestQuery_LLMFailure(t *testing.T) {
	embedder := &axisEmbedder{}
	q, err := NewQuerier(seeded(t, embedder), embedder, &recordingLLM{err: errors.New("down")}, 0, nil)
	require.NoError(t, err)

	_, err = q.Query(context.Background(), "doc 1", 2)

	assert.ErrorContains(t, err, "generate answer")
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Quoi ?", []string{"A", "B"})

	assert.Contains(t, got, "documents :\n\nA\n\nB\n\nVotre mission")
	assert.True(t, strings.HasSuffix(got, "\n\nQuoi ?"))
}
