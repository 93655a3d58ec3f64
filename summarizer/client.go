// Package summarizer generates call summaries with an OpenAI-compatible
// chat-completions endpoint.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSummarizerModel   = "gpt-3.5-turbo"
	defaultSummarizerAPIURL  = "https://api.openai.com/v1/chat/completions"
	defaultSummarizerTimeout = 60 * time.Second
	defaultMaxTokens         = 400
	defaultTemperature       = 0.3
)

// Client wraps calls to the summarization model.
type Client struct {
	client      *http.Client
	apiURL      string
	apiKey      string
	model       string
	persona     string
	maxTokens   int
	temperature float32
}

// NewClientFromEnv builds the summarizer client from environment variables.
// OPENAI_API_KEY is required; everything else has defaults.
func NewClientFromEnv() (*Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for call summarization")
	}

	apiURL := strings.TrimSpace(os.Getenv("OPENAI_API_URL"))
	if apiURL == "" {
		apiURL = defaultSummarizerAPIURL
	}

	model := strings.TrimSpace(os.Getenv("SUMMARIZER_MODEL_NAME"))
	if model == "" {
		model = defaultSummarizerModel
	}

	persona := strings.TrimSpace(os.Getenv("ASSISTANT_NAME"))
	if persona == "" {
		persona = "Priya"
	}

	timeout := defaultSummarizerTimeout
	if raw := strings.TrimSpace(os.Getenv("SUMMARIZER_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	temp := float32(defaultTemperature)
	if raw := strings.TrimSpace(os.Getenv("SUMMARIZER_TEMPERATURE")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 32); err == nil && v >= 0 {
			temp = float32(v)
		}
	}

	return &Client{
		client:      &http.Client{Timeout: timeout},
		apiURL:      apiURL,
		apiKey:      apiKey,
		model:       model,
		persona:     persona,
		maxTokens:   defaultMaxTokens,
		temperature: temp,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize asks the model for a summary of a finished call. callerInfo is
// the display form of the caller identity ("Name (+15551234567)").
func (c *Client) Summarize(ctx context.Context, transcript, callerInfo string) (string, error) {
	if c == nil {
		return "", errors.New("summarizer client not initialized")
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt()},
			{Role: "user", Content: c.userPrompt(transcript, callerInfo)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call summarizer model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("summarizer model returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		log.Printf("Summarizer returned empty completion in %v", time.Since(start))
		return "Unable to generate summary", nil
	}

	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) systemPrompt() string {
	return fmt.Sprintf("You are %s, a helpful personal AI assistant. You handle calls professionally and provide clear, actionable summaries.", c.persona)
}

func (c *Client) userPrompt(transcript, callerInfo string) string {
	return fmt.Sprintf(`You are %s, a personal AI assistant. You just handled a phone call and need to provide a clear, concise summary to your human.

Caller Information: %s

Call Transcript:
%s

Please provide a professional summary that includes:
1. **Main Purpose**: What did the caller want or need?
2. **Key Information**: Important details, dates, times, or requests mentioned
3. **Action Items**: Any tasks, follow-ups, or meetings that need to be scheduled
4. **Next Steps**: What needs to be done next (if anything)

Keep the summary clear, professional, and actionable. Focus on what's most important for your human to know.`, c.persona, callerInfo, transcript)
}
