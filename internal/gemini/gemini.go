package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModel  = "gemini-1.5-flash"
	maxInputRunes = 4000
)

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: defaultModel}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) Name() string { return "gemini" }

// Translate asks Gemini for a plain translation of a football news snippet.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	if utf8.RuneCountInString(text) > maxInputRunes {
		text = string([]rune(text)[:maxInputRunes])
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(Prompt(text, targetLang)))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("empty response from Gemini")
	}
	return out, nil
}

// Prompt builds the translation instruction shared by the LLM backends.
func Prompt(text, targetLang string) string {
	return fmt.Sprintf(`Translate the following football news text into the language with ISO code %q.
Keep player, club and competition names as they are.
Return only the translated text, without notes, quotes or comments.

Text:
%s`, targetLang, text)
}
