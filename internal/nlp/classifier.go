package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ZeroShotClassifier calls a HuggingFace-style zero-shot classification
// endpoint (e.g. facebook/bart-large-mnli behind an inference server).
type ZeroShotClassifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// ZeroShotConfig configures the classifier client.
type ZeroShotConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewZeroShotClassifier creates a classifier client.
func NewZeroShotClassifier(cfg ZeroShotConfig) (*ZeroShotClassifier, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("classifier endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ZeroShotClassifier{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Classify posts the text with the candidate labels and returns the
// top-ranked label with its score.
func (c *ZeroShotClassifier) Classify(ctx context.Context, text string, labels []string) (string, float64, error) {
	body, err := json.Marshal(map[string]interface{}{
		"inputs": text,
		"parameters": map[string]interface{}{
			"candidate_labels": labels,
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", 0, fmt.Errorf("classifier returned %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}

	// The endpoint returns labels sorted by descending score.
	var out struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", 0, fmt.Errorf("decode classifier response: %w", err)
	}
	if len(out.Labels) == 0 || len(out.Scores) == 0 {
		return "", 0, errors.New("classifier returned no labels")
	}
	return out.Labels[0], out.Scores[0], nil
}
