package llm

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	APIKey    string
	Model     string
	Providers []string
}

var config *Config

func Init(cfg *Config) {
	config = cfg
}

// OpenRouter API structures
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ProviderPreferences struct {
	Order          []string `json:"order,omitempty"`
	Quantizations  []string `json:"quantizations,omitempty"`
	AllowFallbacks *bool    `json:"allow_fallbacks,omitempty"`
}

type ChatRequest struct {
	Model       string               `json:"model"`
	Messages    []Message            `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Provider    *ProviderPreferences `json:"provider,omitempty"`
}

type ChatResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

type ResponseMessage struct {
	Content string `json:"content"`
}

type APIError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// openRouterURL is a var so tests can point the client at a local server.
var openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

const ocrPrompt = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
	"- No formatting\n" +
	"- No XML/HTML tags\n" +
	"- No markdown\n" +
	"- No explanations\n" +
	"- Preserve line breaks accurately from the visual layout.\n" +
	"If no text found, return 'NO_TEXT_FOUND'"

// getProviderPreferences returns provider preferences based on config
func getProviderPreferences() *ProviderPreferences {
	if config == nil || len(config.Providers) == 0 {
		// No providers specified, use default OpenRouter routing
		return nil
	}

	allowFallbacks := false
	return &ProviderPreferences{
		Order:          config.Providers,
		AllowFallbacks: &allowFallbacks,
	}
}

func validateConfig() error {
	if config == nil {
		return fmt.Errorf("LLM client not initialized")
	}
	if config.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// QueryVision sends an image to an OpenRouter vision model for OCR and
// returns the extracted text.
func QueryVision(imageData []byte) (string, error) {
	if err := validateConfig(); err != nil {
		return "", err
	}

	request := ChatRequest{
		Model: config.Model,
		Messages: []Message{
			{
				Role: "user",
				Content: []Content{
					{Type: "text", Text: ocrPrompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURL(imageData)}},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
		Provider:    getProviderPreferences(),
	}

	text, err := completeWithRetries(request)
	if err != nil {
		return "", err
	}
	if text == "" || text == "NO_TEXT_FOUND" {
		return "", fmt.Errorf("no text detected in image")
	}
	return cleanExtractedText(text), nil
}

// Complete sends a system prompt plus user text to the chat model and
// returns the raw completion.
func Complete(system, user string) (string, error) {
	if err := validateConfig(); err != nil {
		return "", err
	}

	request := ChatRequest{
		Model: config.Model,
		Messages: []Message{
			{Role: "system", Content: []Content{{Type: "text", Text: system}}},
			{Role: "user", Content: []Content{{Type: "text", Text: user}}},
		},
		Temperature: 0.9,
		MaxTokens:   4000,
		Provider:    getProviderPreferences(),
	}

	return completeWithRetries(request)
}

// CompleteVision sends a prompt and an image to the multimodal model
// and returns the raw completion.
func CompleteVision(prompt string, imageData []byte) (string, error) {
	if err := validateConfig(); err != nil {
		return "", err
	}

	request := ChatRequest{
		Model: config.Model,
		Messages: []Message{
			{
				Role: "user",
				Content: []Content{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURL(imageData)}},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   4000,
		Provider:    getProviderPreferences(),
	}

	return completeWithRetries(request)
}

// Ping performs a minimal completion to validate the API key, model
// name and network path at startup.
func Ping() error {
	if err := validateConfig(); err != nil {
		return err
	}

	request := ChatRequest{
		Model: config.Model,
		Messages: []Message{
			{Role: "user", Content: []Content{{Type: "text", Text: "ping"}}},
		},
		Temperature: 0,
		MaxTokens:   1,
		Provider:    getProviderPreferences(),
	}

	_, err := makeAPIRequest(request)
	return err
}

// completeWithRetries retries transient failures with a growing delay.
func completeWithRetries(request ChatRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(initialDelay) * (1.5 * float64(attempt)))
			time.Sleep(delay)
		}

		response, err := makeAPIRequest(request)
		if err != nil {
			lastErr = err
			continue
		}

		if len(response.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in API response")
			continue
		}

		return strings.TrimSpace(response.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("failed after %d attempts: %v", maxRetries, lastErr)
}

func makeAPIRequest(request ChatRequest) (*ChatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequest("POST", openRouterURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", config.APIKey))
	req.Header.Set("X-Title", "Screen Capture LLM")

	client := &http.Client{Timeout: 45 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %v", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (type: %s, code: %v)", response.Error.Message, response.Error.Type, response.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return &response, nil
}

func dataURL(imageData []byte) string {
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(imageData))
}

func cleanExtractedText(text string) string {
	// Some models echo the image tag back around the payload.
	if text == "</image>" {
		return ""
	}
	return strings.TrimSuffix(text, "</image>")
}
