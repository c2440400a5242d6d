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

	"github.com/docuvault/docuvault/internal/models"
)

// EntityRecognizer calls a token-classification inference endpoint and maps
// the grouped spans to entities in order of appearance.
type EntityRecognizer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// EntityRecognizerConfig configures the NER client.
type EntityRecognizerConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewEntityRecognizer creates a NER client.
func NewEntityRecognizer(cfg EntityRecognizerConfig) (*EntityRecognizer, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("ner endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &EntityRecognizer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Recognize posts the text and returns the recognized spans. The result
// keeps the service's order and is never de-duplicated.
func (r *EntityRecognizer) Recognize(ctx context.Context, text string) ([]models.Entity, error) {
	body, err := json.Marshal(map[string]interface{}{
		"inputs": text,
		"parameters": map[string]interface{}{
			"aggregation_strategy": "simple",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ner returned %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var spans []struct {
		EntityGroup string `json:"entity_group"`
		Word        string `json:"word"`
	}
	if err := json.Unmarshal(payload, &spans); err != nil {
		return nil, fmt.Errorf("decode ner response: %w", err)
	}

	entities := make([]models.Entity, 0, len(spans))
	for _, span := range spans {
		entities = append(entities, models.Entity{Text: span.Word, Label: span.EntityGroup})
	}
	return entities, nil
}
