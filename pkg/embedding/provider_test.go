package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		provider string
		wantType interface{}
		wantErr  bool
	}{
		{provider: "", wantType: &OpenAIProvider{}},
		{provider: "openai", wantType: &OpenAIProvider{}},
		{provider: "ollama", wantType: &OllamaProvider{}},
		{provider: "faiss", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			e, err := NewEmbedder(tt.provider, "", "key", "", "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, e)
		})
	}
}

func TestOllamaEmbedNormalises(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	vecs, err := NewOllamaProvider(srv.URL, "").EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.InDelta(t, 0.6, vecs[0][0], 1e-6)
	assert.InDelta(t, 0.8, vecs[0][1], 1e-6)
}

func TestOllamaEmbedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").EmbedQuery(context.Background(), "q")
	assert.ErrorContains(t, err, "model not found")
}

func TestOpenAIEmbedBatchesAndOrders(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batches = append(batches, len(req.Input))

		// answer in reverse order to check Index is honoured
		data := make([]string, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, fmt.Sprintf(`{"object":"embedding","index":%d,"embedding":[%d]}`, i, len(req.Input[i])))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"object":"list","model":"m","data":[%s],"usage":{"prompt_tokens":1,"total_tokens":1}}`,
			strings.Join(data, ","))
	}))
	defer srv.Close()

	texts := make([]string, maxBatch+1)
	for i := range texts {
		texts[i] = strings.Repeat("x", i%7+1)
	}
	vecs, err := NewOpenAIProvider("key", srv.URL, "").EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, []int{maxBatch, 1}, batches)
	require.Len(t, vecs, len(texts))
	for i, v := range vecs {
		assert.Equal(t, float32(len(texts[i])), v[0])
	}
}
