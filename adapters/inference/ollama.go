package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

const systemPrompt = "You are a project management expert. Analyze task statuses " +
	"and provide status recommendations in JSON format only. Always respond with valid JSON."

// OllamaAnalyzer asks an OpenAI-compatible chat completions endpoint (Ollama,
// vLLM, OpenRouter) to recommend a task status. Any transport failure,
// timeout, or unusable reply falls back to the deterministic rule-based
// calculation, so analysis never fails outright.
type OllamaAnalyzer struct {
	baseURL  string
	model    string
	apiKey   string
	client   *http.Client
	fallback *RuleAnalyzer
	log      *slog.Logger
}

// NewOllamaAnalyzer creates a model-backed analyzer. baseURL is the API root,
// e.g. "http://localhost:11434/v1". apiKey may be empty for local servers.
func NewOllamaAnalyzer(baseURL, model, apiKey string, timeout time.Duration, log *slog.Logger) *OllamaAnalyzer {
	return &OllamaAnalyzer{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		fallback: NewRuleAnalyzer(),
		log:      log,
	}
}

var _ ports.StatusAnalyzer = (*OllamaAnalyzer)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
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

// analysisReply is the JSON shape the model is instructed to produce.
type analysisReply struct {
	RecommendedStatus    string  `json:"recommended_status"`
	Confidence           float64 `json:"confidence"`
	Reasoning            string  `json:"reasoning"`
	CompletionPercentage int     `json:"completion_percentage"`
}

// AnalyzeTask queries the model, falling back to rules on any failure.
func (a *OllamaAnalyzer) AnalyzeTask(ctx context.Context, snapshot core.TaskSnapshot) (core.StatusAnalysis, error) {
	analysis, err := a.query(ctx, snapshot)
	if err != nil {
		a.log.Warn("model analysis failed, using rule-based fallback", "error", err)
		return a.fallback.AnalyzeTask(ctx, snapshot)
	}
	return analysis, nil
}

func (a *OllamaAnalyzer) query(ctx context.Context, snapshot core.TaskSnapshot) (core.StatusAnalysis, error) {
	body, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(snapshot)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return core.StatusAnalysis{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return core.StatusAnalysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return core.StatusAnalysis{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.StatusAnalysis{}, fmt.Errorf("chat completions returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return core.StatusAnalysis{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return core.StatusAnalysis{}, fmt.Errorf("response contained no choices")
	}

	return parseReply(chat.Choices[0].Message.Content)
}

func buildPrompt(snapshot core.TaskSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this task and its subtasks to determine the appropriate status.\n\n")
	fmt.Fprintf(&b, "Task: %s\nCurrent Status: %s\nTotal Subtasks: %d\n\nSubtask Statuses:\n",
		snapshot.Title, snapshot.Status, len(snapshot.Subtasks))
	for _, sub := range snapshot.Subtasks {
		fmt.Fprintf(&b, "- %s: %s\n", sub.Title, sub.Status)
	}
	b.WriteString(`
Rules:
- If all subtasks are "done", the task should be "done"
- If the majority are "in_progress", the task should be "in_progress"
- If most are "to_do", the task should be "to_do"
- If any are "in_progress" and some "done", the task should be "in_progress"
- Consider "review" status for completed but unverified work

Respond with JSON only (no markdown, no explanation):
{
    "recommended_status": "to_do|in_progress|review|done",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation",
    "completion_percentage": 0-100
}`)
	return b.String()
}

// parseReply extracts the analysis from the model's message content, which
// may arrive wrapped in a markdown code fence.
func parseReply(content string) (core.StatusAnalysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var reply analysisReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return core.StatusAnalysis{}, fmt.Errorf("reply was not valid JSON: %w", err)
	}

	status := core.TaskStatus(reply.RecommendedStatus)
	if !status.Valid() {
		return core.StatusAnalysis{}, fmt.Errorf("reply recommended unknown status %q", reply.RecommendedStatus)
	}
	if reply.CompletionPercentage < 0 || reply.CompletionPercentage > 100 {
		return core.StatusAnalysis{}, fmt.Errorf("reply completion percentage out of range: %d", reply.CompletionPercentage)
	}

	return core.StatusAnalysis{
		RecommendedStatus:    status,
		Confidence:           reply.Confidence,
		Reasoning:            reply.Reasoning,
		CompletionPercentage: reply.CompletionPercentage,
	}, nil
}
