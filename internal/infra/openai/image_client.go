package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"printshop/internal/logger"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
	Timeout time.Duration
}

// /v1/images/generations だけを叩く薄いクライアント
type ImageClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	size       string
	httpClient *http.Client
}

func NewImageClient(log *logger.Logger, cfg Config) (*ImageClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-image-1"
	}
	size := strings.TrimSpace(cfg.Size)
	if size == "" {
		size = "1024x1024"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &ImageClient{
		log:        log.With("client", "OpenAIImage"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		size:       size,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

type imagesGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"` // b64_json|url
}

type imagesGenerationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// URLを返す。base64で返ってきたらdata URLにする。
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("image prompt required")
	}

	// gpt-image系はresponse_formatを受け付けない（常にb64）
	responseFormat := "url"
	if strings.HasPrefix(strings.ToLower(c.model), "gpt-image-") {
		responseFormat = ""
	}

	body, err := json.Marshal(imagesGenerationRequest{
		Model:          c.model,
		Prompt:         prompt,
		N:              1,
		Size:           c.size,
		ResponseFormat: responseFormat,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out imagesGenerationResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai decode error: %w", err)
	}
	if len(out.Data) == 0 {
		return "", errors.New("no image returned")
	}
	c.log.Debug("image generated", "model", c.model, "elapsed_ms", time.Since(start).Milliseconds())

	item := out.Data[0]
	if u := strings.TrimSpace(item.URL); u != "" {
		return u, nil
	}
	if b64 := strings.TrimSpace(item.B64JSON); b64 != "" {
		return "data:image/png;base64," + b64, nil
	}
	return "", errors.New("image response missing b64_json and url")
}
