package generation

import (
	"context"
	"errors"
	"fmt"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements Provider over any OpenAI-compatible chat completions
// endpoint (OpenAI itself, Gemini's compatibility layer, gateways).
type OpenAIProvider struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAIProvider(s Settings) (*OpenAIProvider, error) {
	if s.Credential == "" {
		return nil, ErrMissingCredential
	}
	if s.Model == "" {
		return nil, errors.New("generation model is required")
	}
	// the SDK retries by default; every retry here is a manual user action
	opts := []option.RequestOption{option.WithAPIKey(s.Credential), option.WithMaxRetries(0)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &OpenAIProvider{Model: s.Model, Opts: opts}, nil
}

func (o *OpenAIProvider) Complete(ctx context.Context, instruction string) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(instruction),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", o.Model)
	}
	return resp.Choices[0].Message.Content, nil
}
