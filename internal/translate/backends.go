package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/deusflow/footnews/internal/gemini"
	"github.com/deusflow/footnews/internal/httpclient"
)

const (
	googleBackendName = "google"
	openAIBackendName = "openai"

	DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

	// maxGoogleRunes keeps the percent-encoded query under the endpoint's URL limit.
	maxGoogleRunes = 1000
)

// Google uses the free public Google Translate endpoint.
type Google struct {
	client  httpclient.Client
	baseURL string
}

func NewGoogle(client httpclient.Client, baseURL string) *Google {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	return &Google{client: client, baseURL: baseURL}
}

func (g *Google) Name() string { return googleBackendName }

func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if utf8.RuneCountInString(text) > maxGoogleRunes {
		text = string([]rune(text)[:maxGoogleRunes])
	}

	resp, err := g.client.GetQuery(ctx, g.baseURL, map[string]string{
		"client": "gtx",
		"sl":     "auto",
		"tl":     targetLang,
		"dt":     "t",
		"q":      text,
	})
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("google translate returned status: %d", resp.StatusCode())
	}

	return parseGoogleTranslateResponse(resp.Body())
}

// parseGoogleTranslateResponse joins the translated segments of the gtx array format.
func parseGoogleTranslateResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if len(response) == 0 {
		return "", errors.New("empty response from Google Translate")
	}

	translations, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, translation := range translations {
		if parts, ok := translation.([]interface{}); ok && len(parts) > 0 {
			if translated, ok := parts[0].(string); ok {
				result.WriteString(translated)
			}
		}
	}

	return result.String(), nil
}

// OpenAI translates through the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey), model: openai.GPT4oMini}
}

func (o *OpenAI) Name() string { return openAIBackendName }

func (o *OpenAI) Translate(ctx context.Context, text, targetLang string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: gemini.Prompt(text, targetLang),
			},
		},
		MaxTokens:   2000,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
