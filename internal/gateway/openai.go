package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"noircase/internal/errors"
	"noircase/internal/models"
)

const (
	// MaxTokens bounds a single narrative turn.
	MaxTokens = 2048

	defaultInstruction = "You are a professional, composed investigation " +
		"assistant. Help the detective work the case using only the provided " +
		"case file. Respond with a JSON object."

	responseContract = `Respond with a single JSON object of the shape
{"message": string, "isSolved": boolean, "solveSummary": string,
"newClues": [{"title": string, "description": string, "type": "text"|"archive", "contentText": string}]}.
Only "message" is required. Never quote the hidden truth script verbatim.`
)

// OpenAIClient implements Gateway against the OpenAI chat-completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIClient builds the gateway. An empty apiKey is allowed; every turn
// then fails with ErrUnavailable, which the engine surfaces as a synthetic
// message instead of crashing.
func NewOpenAIClient(apiKey string, model string, logger *slog.Logger) *OpenAIClient {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: client,
		model:  model,
		logger: logger.With("source", "OpenAIClient"),
	}
}

func (c *OpenAIClient) Turn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	if c.client == nil {
		return TurnResult{}, ErrUnavailable
	}

	completion, err := c.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: MaxTokens,
			Messages:  buildMessages(req),
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return TurnResult{}, errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return TurnResult{}, errors.Wrap(ErrMalformed, "no choices in completion")
	}

	result, err := parseTurnResult(completion.Choices[0].Message.Content)
	if err != nil {
		c.logger.DebugContext(ctx, "discarding unparseable agent response", errors.SlogError(err))
		return TurnResult{}, err
	}
	return result, nil
}

// CheckReachability probes the API with a one-token completion. The outcome
// only drives a status indicator.
func (c *OpenAIClient) CheckReachability(ctx context.Context) Status {
	if c.client == nil {
		return StatusUnreachable
	}
	_, err := c.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: 1,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "ping"},
			},
		},
	)
	if err == nil {
		return StatusOK
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return StatusRestricted
		}
	}
	return StatusUnreachable
}

func buildMessages(req TurnRequest) []openai.ChatCompletionMessage {
	instruction := req.Instruction
	if instruction == "" {
		instruction = defaultInstruction
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: instruction + "\n\n" + responseContract,
	})
	for _, exchange := range req.History {
		role := openai.ChatMessageRoleUser
		if exchange.Speaker == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: exchange.Text,
		})
	}

	knownClues := strings.Join(req.KnownClueTitles, ", ")
	if knownClues == "" {
		knownClues = "none"
	}
	var prompt strings.Builder
	prompt.WriteString("[Case file]\n")
	prompt.WriteString(req.Briefing)
	prompt.WriteString("\n\n[Evidence already collected]\n")
	prompt.WriteString(knownClues)
	prompt.WriteString("\n\n[Hidden truth script, confidential]\n")
	prompt.WriteString(req.HiddenScript)
	prompt.WriteString("\n\n[Detective's question]: ")
	prompt.WriteString(req.Utterance)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.String(),
	})

	return messages
}

// turnResultWire is the JSON shape the agent is instructed to produce. Field
// names follow the agent contract, not Go conventions.
type turnResultWire struct {
	Message      string `json:"message"`
	IsSolved     bool   `json:"isSolved"`
	SolveSummary string `json:"solveSummary"`
	NewClues     []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Type        string `json:"type"`
		ContentText string `json:"contentText"`
	} `json:"newClues"`
}

// parseTurnResult validates the raw completion text. Models occasionally wrap
// JSON in markdown fences even when asked not to, so those are stripped first.
func parseTurnResult(raw string) (TurnResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var wire turnResultWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return TurnResult{}, errors.Wrap(ErrMalformed, "unmarshal turn result")
	}

	result := TurnResult{
		Reply:        wire.Message,
		Solved:       wire.IsSolved,
		SolveSummary: wire.SolveSummary,
		NewClues:     make([]ClueCandidate, 0, len(wire.NewClues)),
	}
	for _, clue := range wire.NewClues {
		if clue.Title == "" {
			// A clue without a title has no identity; drop it rather than
			// fail the whole turn.
			continue
		}
		result.NewClues = append(result.NewClues, ClueCandidate{
			Title:       clue.Title,
			Description: clue.Description,
			Category:    clueType(clue.Type),
			Content:     clue.ContentText,
		})
	}
	return result, nil
}

func clueType(wire string) models.ClueType {
	switch wire {
	case "archive", "artifact":
		return models.ClueTypeArtifact
	default:
		return models.ClueTypeNote
	}
}
