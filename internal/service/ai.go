package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

var ErrAIEmptyResponse = errors.New("model response contained no text part")

// ParsedTask is the structured result of parsing free text into task
// fields. DueDate stays a string ("YYYY-MM-DD HH:mm:ss" or empty) so a
// parse failure on the model side surfaces as an empty field, not an error.
type ParsedTask struct {
	Title    string   `json:"title"`
	DueDate  string   `json:"dueDate"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

// AIService extracts task fields from natural-language text via Gemini.
// The contract is text in, structured fields out, or an error; nothing else
// in the system depends on it.
type AIService struct {
	client *genai.Client
	clock  Clock
}

func NewAIService(ctx context.Context, apiKey string, clock Clock) (*AIService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &AIService{client: client, clock: clock}, nil
}

func (s *AIService) Close() error {
	return s.client.Close()
}

func (s *AIService) ParseTask(ctx context.Context, text string) (*ParsedTask, error) {
	model := s.client.GenerativeModel(geminiModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":    {Type: genai.TypeString},
			"dueDate":  {Type: genai.TypeString},
			"priority": {Type: genai.TypeString},
			"tags":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
	}

	today := s.clock.Now().Format("2006-01-02")
	prompt := fmt.Sprintf(`Analyze the following sentence and extract the fields for a task: %q

Respond with a single JSON object with fields: "title" (string), "dueDate" (string "YYYY-MM-DD HH:mm:ss" or empty), "priority" ("High", "Medium", "Low" or "None") and "tags" (array of strings).
Use %s as the current date when resolving relative terms like "tomorrow".`, text, today)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	var parsed ParsedTask
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	return &parsed, nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrAIEmptyResponse
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", ErrAIEmptyResponse
	}
	return string(text), nil
}
