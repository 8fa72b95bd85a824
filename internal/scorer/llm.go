package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/prepdesk/prepdesk/internal/model"
)

// llmResult is the JSON object the model is instructed to return.
type llmResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// LLM scores answers through an OpenAI-compatible chat completion API.
// It honors the same contract as the heuristic: an integer in [0,100]
// computed from the question, answer, and timing.
type LLM struct {
	api   *openai.Client
	model string
}

// NewLLM creates an LLM scorer against an OpenAI-compatible endpoint.
func NewLLM(baseURL, apiKey, modelName string) *LLM {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &LLM{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable and the model exists.
func (l *LLM) Ping(ctx context.Context) error {
	_, err := l.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// ScoreAnswer asks the model for a single 0-100 score.
func (l *LLM) ScoreAnswer(ctx context.Context, questionText, answerText string, timeSpent, maxTime int) (int, error) {
	systemPrompt := buildScoringPrompt(questionText, timeSpent, maxTime)

	resp, err := l.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: answerText},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return 0, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM scoring response", "raw", raw)

	var result llmResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return 0, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}

	return clampScore(result.Score), nil
}

// Finalize aggregates per-answer scores into the final result. The
// aggregate stays deterministic even with an LLM backend: the model
// scored each answer once, and those scores are cached on the
// candidate, never recomputed.
func (l *LLM) Finalize(_ context.Context, answers []model.Answer) (Result, error) {
	return finalize(answers)
}

func buildScoringPrompt(questionText string, timeSpent, maxTime int) string {
	var sb strings.Builder
	sb.WriteString("You are a technical interview evaluator. The candidate answered the following question:\n\n")
	sb.WriteString("QUESTION: " + questionText + "\n\n")
	sb.WriteString(fmt.Sprintf("The candidate used %d of %d allotted seconds.\n\n", timeSpent, maxTime))
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("- Evaluate the answer for correctness, completeness, and depth of understanding.\n")
	sb.WriteString("- An empty or irrelevant answer scores 0.\n")
	sb.WriteString("- Do not reward verbosity on its own.\n")
	sb.WriteString("\nRespond ONLY with a JSON object with these fields:\n")
	sb.WriteString(`{"score": <integer 0 to 100>, "feedback": "<brief feedback>"}`)
	sb.WriteString("\n")
	return sb.String()
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
