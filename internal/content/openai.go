package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

const (
	descriptionSystemPrompt = "You are a technical writer creating detailed software development tickets."
	summarySystemPrompt     = "You write one-line titles for software development tickets."
)

// OpenAI is a Provider backed by an OpenAI-compatible chat completions
// endpoint. Descriptions are requested in markdown with fixed section
// headings so the embedded Extractor can parse them.
type OpenAI struct {
	Extractor

	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	Temperature float64
	MaxTokens   int
}

// NewOpenAI returns a provider that posts to baseURL + "/chat/completions".
// A nil httpClient uses http.DefaultClient.
func NewOpenAI(httpClient *http.Client, baseURL, apiKey, model string) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		Temperature: 0.7,
		MaxTokens:   500,
	}
}

func (o *OpenAI) GenerateDescription(ctx context.Context, req Request) (string, error) {
	return o.complete(ctx, descriptionSystemPrompt, descriptionPrompt(req), o.MaxTokens)
}

func (o *OpenAI) GenerateSummary(ctx context.Context, text string, t model.TicketType) (string, error) {
	prompt := fmt.Sprintf("Write a summary of at most 80 characters for this %s. Reply with the summary only.\n\n%s", t, text)
	out, err := o.complete(ctx, summarySystemPrompt, prompt, 60)
	if err != nil {
		return "", err
	}
	out = strings.Trim(strings.TrimSpace(out), `"`)
	if out == "" {
		return "", fmt.Errorf("summary: %w", ErrNoField)
	}
	return truncate(out, 80), nil
}

func descriptionPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a detailed, realistic ticket description for a software development task with the following details:\n")
	fmt.Fprintf(&b, "Title: %s\nType: %s\nComponent: %s\n", req.Title, req.Type, req.Component)
	if req.Initiative != "" {
		fmt.Fprintf(&b, "Initiative: %s\n", req.Initiative)
	}
	if req.Parent != "" {
		fmt.Fprintf(&b, "Parent: %s\n", req.Parent)
	}
	b.WriteString("\nStart with a level-one heading holding the title, then include these level-two sections:\n")
	b.WriteString("## Background\n")
	if req.Type == model.TypeBug {
		fmt.Fprintf(&b, "## %s (numbered list)\n## %s\n## %s\n", SectionStepsToReproduce, SectionExpectedBehavior, SectionActualBehavior)
	} else {
		fmt.Fprintf(&b, "## %s (a whole number of story points)\n## %s\n## %s (bullet list)\n", SectionEffort, SectionTechnicalNotes, SectionAcceptanceCriteria)
	}
	b.WriteString("\nFormat the response in markdown.")
	return b.String()
}

func (o *OpenAI) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: o.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai: decoding response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// APIError is a non-200 response from the endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("openai: HTTP %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var wire struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if json.Unmarshal(body, &wire) == nil {
		apiErr.Type = wire.Error.Type
		apiErr.Message = wire.Error.Message
	}
	return apiErr
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
