// Package ai talks to the OpenAI chat completions API to generate
// word explanations, practice sentences, sentence evaluations and
// translations, with bounded retries and token accounting.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
)

// Generation actions understood by the client
const (
	ActionExplain   = "explain"
	ActionSentences = "sentences"
	ActionEvaluate  = "evaluate"
	ActionTranslate = "translate"
)

const (
	maxRetries = 2
	retryDelay = 500 * time.Millisecond
)

// Request carries the parameters common to every generation action.
type Request struct {
	UserID  string
	Word    string
	Profile string // short learner summary (native/target language, level)
	Context string // optional usage context chosen by the user
}

// Evaluation is the structured result of the evaluate action.
type Evaluation struct {
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
	Corrected string `json:"corrected"`
}

// Client wraps the OpenAI API for the generation actions.
type Client struct {
	client oai.Client
	model  string
	usage  *repository.UsageRepository
}

// New constructs a Client. The usage repository may be nil, in which
// case token accounting is skipped.
func New(apiKey, model string, usage *repository.UsageRepository, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: API key must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("ai: model must not be empty")
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{client: oai.NewClient(reqOpts...), model: model, usage: usage}, nil
}

// Explain generates a personalized explanation for a word.
func (c *Client) Explain(ctx context.Context, req Request) (*models.WordExplanation, error) {
	var out struct {
		Definition       string            `json:"definition"`
		Usage            string            `json:"usage"`
		MemoryHook       string            `json:"memory_hook"`
		ExampleSentences []models.Sentence `json:"example_sentences"`
	}
	err := c.completeJSON(ctx, req.UserID, explainSystemPrompt(req), explainUserPrompt(req), &out)
	if err != nil {
		return nil, fmt.Errorf("failed to generate explanation for %q: %w", req.Word, err)
	}
	return &models.WordExplanation{
		UserID:           req.UserID,
		Definition:       out.Definition,
		Usage:            out.Usage,
		MemoryHook:       out.MemoryHook,
		ExampleSentences: out.ExampleSentences,
	}, nil
}

// Sentences generates example sentences for a word.
func (c *Client) Sentences(ctx context.Context, req Request) ([]models.Sentence, error) {
	var out struct {
		Sentences []models.Sentence `json:"sentences"`
	}
	err := c.completeJSON(ctx, req.UserID, sentencesSystemPrompt(req), sentencesUserPrompt(req), &out)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sentences for %q: %w", req.Word, err)
	}
	return out.Sentences, nil
}

// Evaluate scores a sentence the user wrote with the word.
func (c *Client) Evaluate(ctx context.Context, req Request, sentence string) (*Evaluation, error) {
	var ev Evaluation
	err := c.completeJSON(ctx, req.UserID, evaluateSystemPrompt(req), evaluateUserPrompt(req, sentence), &ev)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate sentence for %q: %w", req.Word, err)
	}
	return &ev, nil
}

// Translate translates a sentence into the learner's native language.
// Results that fail validation are retried; when the retry budget is
// exhausted the placeholder is returned instead of an error.
func (c *Client) Translate(ctx context.Context, req Request, sentence string) string {
	var out struct {
		Translation string `json:"translation"`
	}
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		err := c.complete(ctx, req.UserID, translateSystemPrompt(req), sentence, &out)
		if err != nil {
			log.Printf("Translation attempt %d failed: %v", attempt+1, err)
			continue
		}
		if ValidTranslation(out.Translation) {
			return strings.TrimSpace(out.Translation)
		}
		log.Printf("Translation attempt %d rejected by validator: %q", attempt+1, out.Translation)
	}
	return Placeholder
}

// completeJSON is complete with the shared retry policy applied.
func (c *Client) completeJSON(ctx context.Context, userID, system, user string, out any) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		if err = c.complete(ctx, userID, system, user, out); err == nil {
			return nil
		}
		log.Printf("Generation attempt %d failed: %v", attempt+1, err)
	}
	return err
}

// complete performs a single chat completion, parses the JSON body
// into out and records token usage.
func (c *Client) complete(ctx context.Context, userID, system, user string, out any) error {
	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}

	c.recordUsage(userID, int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))

	body := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("failed to parse response %q: %w", body, err)
	}
	return nil
}

func (c *Client) recordUsage(userID string, input, output int) {
	if c.usage == nil || userID == "" {
		return
	}
	if err := c.usage.Add(userID, int64(input), int64(output), time.Now()); err != nil {
		log.Printf("Failed to record token usage for user %s: %v", userID, err)
	}
}

// stripFences removes a markdown code fence the model sometimes wraps
// JSON output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
