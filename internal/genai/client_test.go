package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", "gemini-2.0-flash", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestGenerateText_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi there"}]}}]}`))
	})

	text, err := client.GenerateText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
}

func TestGenerateWithImages_InlineData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		contents := raw["contents"].([]any)
		parts := contents[0].(map[string]any)["parts"].([]any)
		require.Len(t, parts, 2)

		inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
		assert.Equal(t, "image/png", inline["mime_type"])
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), inline["data"])

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a screenshot"}]}}]}`))
	})

	text, err := client.GenerateWithImages(context.Background(), "describe", []models.Image{
		{MIMEType: "image/png", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a screenshot", text)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		wantMsg  string
	}{
		{
			name:     "RateLimited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"code":429,"message":"Resource exhausted","status":"RESOURCE_EXHAUSTED"}}`,
			sentinel: ErrRateLimited,
			wantMsg:  "Resource exhausted",
		},
		{
			name:    "Rejected",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`,
			wantMsg: "API key not valid",
		},
		{
			name:    "RejectedNoBody",
			status:  http.StatusBadGateway,
			body:    ``,
			wantMsg: "Gemini API エラー (502)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GenerateText(context.Background(), "x")
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`,
		`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
	}
	for _, body := range bodies {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		_, err := client.GenerateText(context.Background(), "x")
		assert.ErrorIs(t, err, ErrEmptyResponse, "body %s", body)
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	client := New("", "gemini-2.0-flash")
	assert.False(t, client.Configured())
	_, err := client.GenerateText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerate_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := New("k", "m", WithBaseURL(base))
	_, err := client.GenerateText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrRequestFailed)
}
