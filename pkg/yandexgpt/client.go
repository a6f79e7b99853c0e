package yandexgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIURL = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

const (
	defaultTemperature = 0.6
	defaultMaxTokens   = 2000
)

type client struct {
	apiKey   string
	folderID string
	model    string
	apiURL   string
	hc       *http.Client
}

func NewClient(apiKey, folderID, model string) *client {
	return &client{
		apiKey:   apiKey,
		folderID: folderID,
		model:    model,
		apiURL:   defaultAPIURL,
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Complete sends prompt as a single user message and returns the model reply.
// Each call is stateless, no prior messages are carried over.
func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	completionReq := completionRequest{
		ModelURI: fmt.Sprintf("gpt://%s/%s", c.folderID, c.model),
		CompletionOptions: completionOptions{
			Stream:      false,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		},
		Messages: []message{{Role: "user", Text: prompt}},
	}

	resp, err := c.sendRequest(ctx, completionReq)
	if err != nil {
		return "", fmt.Errorf("sending request to %s: %w", c.apiURL, err)
	}
	defer resp.Body.Close()

	var completionResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return "", fmt.Errorf("decoding response data: %w", err)
	}

	// The API may return several alternatives, only the first one is used.
	alternatives := completionResp.Result.Alternatives
	if len(alternatives) == 0 || alternatives[0].Message.Text == "" {
		return "", fmt.Errorf("no completion alternatives in response")
	}

	return alternatives[0].Message.Text, nil
}

func (c *client) sendRequest(ctx context.Context, completionReq completionRequest) (*http.Response, error) {
	body, err := json.Marshal(completionReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing HTTP request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp, nil
}
