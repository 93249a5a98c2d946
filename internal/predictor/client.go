// Package predictor is the HTTP bridge to the external recall-prediction
// service. The service reads the word's interaction history itself; callers
// only pass the word id.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wordrecall/backend/internal/middleware"
)

// WarmUpWordID is a placeholder id safe to send before any real word exists.
// The service loads its model and returns a default instead of erroring.
const WarmUpWordID = "__warmup__"

// Client calls the recall-prediction endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type predictRequest struct {
	WordID string `json:"wordId"`
}

type predictResponse struct {
	PRecall *float64 `json:"p_recall,omitempty"`
	Status  string   `json:"status,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewClient creates a predictor client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict asks the service for the probability of recall of one word. The
// call is idempotent and safe for not-yet-existent ids (warm-up). Expected
// latency is high; callers must not block interactive paths on it.
func (c *Client) Predict(ctx context.Context, wordID string) (float64, error) {
	start := time.Now()
	p, err := c.predict(ctx, wordID)
	middleware.RecordPredictorCall(err == nil, time.Since(start))
	return p, err
}

func (c *Client) predict(ctx context.Context, wordID string) (float64, error) {
	jsonBody, err := json.Marshal(predictRequest{WordID: wordID})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict_recall", bytes.NewBuffer(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("predictor returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var predResp predictResponse
	if err := json.Unmarshal(body, &predResp); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if predResp.Error != "" {
		return 0, fmt.Errorf("predictor error: %s", predResp.Error)
	}
	if predResp.PRecall == nil {
		return 0, fmt.Errorf("predictor returned no p_recall value")
	}
	if *predResp.PRecall < 0 || *predResp.PRecall > 1 {
		return 0, fmt.Errorf("predictor returned out-of-range p_recall %f", *predResp.PRecall)
	}

	return *predResp.PRecall, nil
}
