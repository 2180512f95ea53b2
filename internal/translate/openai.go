package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wanderkit/placesync/internal/config"
	"go.uber.org/zap"
)

type openAIClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	log     *zap.Logger
}

func NewOpenAIClient(cfg config.Config, log *zap.Logger) Translator {
	return &openAIClient{
		http:    &http.Client{Timeout: cfg.TranslatorTimeout},
		baseURL: strings.TrimRight(cfg.TranslatorBaseURL, "/"),
		apiKey:  cfg.TranslatorAPIKey,
		model:   cfg.TranslatorModel,
		log:     log.Named("translate.openai"),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("translator api key not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: fmt.Sprintf("Translate the following text into %s. Reply with the translated text only.", targetLang),
			},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation request: unexpected http status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("translation response has no choices")
	}

	translated := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if translated == "" {
		return "", errors.New("translation response is empty")
	}
	return translated, nil
}
