package predictor

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

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.URL, 5*time.Second), server
}

func TestClient_Predict(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expected    float64
		expectError bool
	}{
		{
			name:     "successful prediction",
			status:   http.StatusOK,
			body:     `{"p_recall": 0.83, "status": "ok"}`,
			expected: 0.83,
		},
		{
			name:     "boundary values accepted",
			status:   http.StatusOK,
			body:     `{"p_recall": 1.0}`,
			expected: 1.0,
		},
		{
			name:        "service error field",
			status:      http.StatusOK,
			body:        `{"error": "model not loaded"}`,
			expectError: true,
		},
		{
			name:        "missing p_recall",
			status:      http.StatusOK,
			body:        `{"status": "ok"}`,
			expectError: true,
		},
		{
			name:        "out of range p_recall",
			status:      http.StatusOK,
			body:        `{"p_recall": 1.5}`,
			expectError: true,
		},
		{
			name:        "negative p_recall",
			status:      http.StatusOK,
			body:        `{"p_recall": -0.1}`,
			expectError: true,
		},
		{
			name:        "non-200 status",
			status:      http.StatusInternalServerError,
			body:        `internal error`,
			expectError: true,
		},
		{
			name:        "malformed JSON body",
			status:      http.StatusOK,
			body:        `{not json`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			got, err := client.Predict(context.Background(), "word-1")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestClient_PredictSendsWordID(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]any

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"p_recall": 0.5}`))
	})

	_, err := client.Predict(context.Background(), WarmUpWordID)
	require.NoError(t, err)

	assert.Equal(t, "/predict_recall", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, WarmUpWordID, gotBody["wordId"])
}

func TestClient_PredictContextCancelled(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"p_recall": 0.5}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Predict(ctx, "word-1")
	assert.Error(t, err)
}
