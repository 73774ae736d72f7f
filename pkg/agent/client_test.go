package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizForwardsRequest(t *testing.T) {
	var got QuizRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quiz/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":{"questions":[{"q":"1+1?"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	out, err := c.Quiz(context.Background(), QuizRequest{UserID: "7", Username: "amy", NoOfQuestions: 3, Topic: "math"})
	require.NoError(t, err)

	assert.Equal(t, 3, got.NoOfQuestions)
	assert.Equal(t, "math", got.Topic)
	assert.JSONEq(t, `{"questions":[{"q":"1+1?"}]}`, string(out))
}

func TestResearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantErr: ErrUnavailable},
		{name: "missing response", status: http.StatusOK, body: `{}`, wantErr: ErrEmptyResponse},
		{name: "empty string", status: http.StatusOK, body: `{"response":""}`, wantErr: ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Research(context.Background(), ResearchRequest{Query: "q"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
