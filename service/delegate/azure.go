package delegate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIVersion = "2024-02-01"
const defaultTimeout = 60 * time.Second

// Config holds the Azure OpenAI connection settings. Endpoint, APIKey and
// Deployment are required; missing values are a fatal configuration error
// reported before any task is accepted.
type Config struct {
	Endpoint   string        `json:"endpoint" yaml:"endpoint"`
	APIKey     string        `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	Deployment string        `json:"deployment" yaml:"deployment"`
	APIVersion string        `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if c.Deployment == "" {
		missing = append(missing, "deployment")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required delegate configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AzureOpenAI implements Completer against the Azure OpenAI chat-completions
// API. Calls are bounded by the configured timeout; there is no retry.
type AzureOpenAI struct {
	config Config
	client *http.Client
}

// NewAzureOpenAI creates a delegate client, applying package defaults for
// optional settings.
func NewAzureOpenAI(config Config) (*AzureOpenAI, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.APIVersion == "" {
		config.APIVersion = defaultAPIVersion
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &AzureOpenAI{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt pair to the chat-completions endpoint and
// returns the completion text.
func (a *AzureOpenAI) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	payload, err := json.Marshal(&chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPayload},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, a.completionURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("api-key", a.config.APIKey)

	response, err := a.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion call failed with status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}
	completion := &chatResponse{}
	if err = json.Unmarshal(body, completion); err != nil {
		return "", fmt.Errorf("malformed completion response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("completion service error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (a *AzureOpenAI) completionURL() string {
	endpoint := strings.TrimSuffix(a.config.Endpoint, "/")
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		endpoint, url.PathEscape(a.config.Deployment), url.QueryEscape(a.config.APIVersion))
}

var _ Completer = (*AzureOpenAI)(nil)
