package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "")
	assert.Error(t, err)

	c, err := NewClient("sk-test", "https://api.mistral.ai/v1")
	assert.NoError(t, err)
	assert.NotNil(t, c.Client())
}

func TestNewEmbedder_Defaults(t *testing.T) {
	assert.Equal(t, DefaultModel, NewEmbedder(nil, "").Model())
	assert.Equal(t, "text-embedding-3-small", NewEmbedder(nil, "text-embedding-3-small").Model())
}

func TestEmbedOne(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","model":"mistral-embed",
			"data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5,1]}],
			"usage":{"prompt_tokens":1,"total_tokens":1}}`)
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)

	vec, err := NewEmbedder(client, "").EmbedOne(context.Background(), "test")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1}, vec)
	assert.Equal(t, DefaultModel, gotModel)
}

func TestEmbedOne_PermanentError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad input","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)

	_, err = NewEmbedder(client, "").EmbedOne(context.Background(), "text")

	assert.Error(t, err)
	assert.False(t, IsRateLimitError(err))
	assert.Equal(t, 1, calls, "non-429 errors are not retried")
}

func TestToFloat32(t *testing.T) {
	assert.Equal(t, []float32{0.5, -1, 0}, toFloat32([]float64{0.5, -1, 0}))
	assert.Empty(t, toFloat32(nil))
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, IsRateLimitError(errors.New("plain")))
	assert.True(t, IsRateLimitError(&openai.Error{StatusCode: 429}))
	assert.False(t, IsRateLimitError(&openai.Error{StatusCode: 500}))
}
