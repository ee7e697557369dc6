package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface needed by core logic to call a chat model.
// It mirrors the CreateChatCompletion method of go-openai so that any
// OpenAI-compatible backend, or a test fake, can be plugged in.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister lists the models a backend serves. Used for the startup
// connectivity check.
type ModelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider adapts *openai.Client to the Client/ModelLister interfaces.
type OpenAIProvider struct {
	Inner *openai.Client
}

// CreateChatCompletion forwards to the wrapped client.
func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

// ListModels forwards to the wrapped client.
func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
	return p.Inner.ListModels(ctx)
}

// Generator is the prompt-in/text-out contract the pipeline stages depend on.
// *Completer implements it.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ValidatingGenerator is a Generator whose cache can be gated on the caller
// accepting the answer. *Completer implements it.
type ValidatingGenerator interface {
	Generator
	CompleteValid(ctx context.Context, prompt string, valid func(string) bool) (string, error)
}

// CompleteValid asks g for a completion of prompt. When g supports it, the
// answer is cached only if valid accepts it; other generators are called
// through Complete.
func CompleteValid(ctx context.Context, g Generator, prompt string, valid func(string) bool) (string, error) {
	if vg, ok := g.(ValidatingGenerator); ok {
		return vg.CompleteValid(ctx, prompt, valid)
	}
	return g.Complete(ctx, prompt)
}
