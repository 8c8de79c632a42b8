package novaagent

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type actionType string

const (
	actionClick     actionType = "click"
	actionTypeInput actionType = "type"
	actionNavigate  actionType = "navigate"
	actionScroll    actionType = "scroll"
	actionFinish    actionType = "finish"
)

type agentAction struct {
	Type     actionType `json:"type"`
	TargetID int        `json:"target_id,omitempty"`
	Text     string     `json:"text,omitempty"`
	Submit   bool       `json:"submit,omitempty"`
	URL      string     `json:"url,omitempty"`
}

type decisionInput struct {
	Instruction string
	DOMTree     string
	CurrentURL  string
	History     string
}

type decision struct {
	Thought string                 `json:"thought"`
	Action  agentAction            `json:"action"`
	Answer  string                 `json:"answer,omitempty"`
	Result  map[string]interface{} `json:"result,omitempty"`
}

const decisionSystemPrompt = `You are a browser automation agent executing ONE instruction at a time.
You see a textual snapshot of the current page. Interactive elements carry
numeric ids in brackets, e.g. [12] <button> Add to Cart.

Respond with a SINGLE JSON object:
{
  "thought": "brief reasoning",
  "action": {
    "type": "click" | "type" | "navigate" | "scroll" | "finish",
    "target_id": 12,       // integer id from the snapshot (click/type)
    "text": "query",       // only for "type"
    "submit": true,        // optional: press Enter after typing
    "url": "https://..."   // only for "navigate"
  },
  "answer": "free text answer",   // only with "finish"
  "result": { ... }               // only with "finish": structured data the
                                  // instruction asked for, e.g. {"name": ..., "price": ...}
}

Rules:
1. When the instruction asks you to READ or EXTRACT data, do not click
   anything: finish immediately with the data in "result".
2. When typing into a search box, set "submit": true.
3. If a cookie banner blocks the page, click its accept/close button first.
4. Finish as soon as the instruction is satisfied.`

type decisionClient struct {
	client *openai.Client
	model  string
}

func newDecisionClient(apiKey, model string) *decisionClient {
	return &decisionClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *decisionClient) decide(ctx context.Context, input decisionInput) (*decision, error) {
	userMessage := fmt.Sprintf(
		"INSTRUCTION: %s\n\nCURRENT URL: %s\n\nRECENT STEPS:\n%s\n\nPAGE SNAPSHOT:\n%s",
		input.Instruction, input.CurrentURL, input.History, input.DOMTree)
	if len(userMessage) > 60000 {
		userMessage = userMessage[:60000] + "\n... (truncated)"
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: decisionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	content := resp.Choices[0].Message.Content
	var d decision
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		return nil, fmt.Errorf("llm response parse failed: %w", err)
	}
	return &d, nil
}
