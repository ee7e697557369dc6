package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/goseo/internal/cache"
)

// ErrNoChoices is returned when the model answers without any choice.
var ErrNoChoices = errors.New("no choices")

// Completer sends a single user-role prompt to a chat model and returns the
// text of the first choice.
type Completer struct {
	Client Client
	Model  string
	// MaxTokens caps the completion length; zero leaves it to the server.
	MaxTokens int
	// MaxRetries is the number of additional attempts after a failed call.
	MaxRetries int
	// Timeout bounds each attempt; zero means no per-call deadline.
	Timeout time.Duration
	// Backoff is the base delay between attempts, multiplied by the attempt
	// number. Zero means 100ms.
	Backoff time.Duration
	Cache   *cache.LLMCache
}

// Complete returns the raw completion text for prompt. Sampling is
// deterministic (temperature 0).
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteValid(ctx, prompt, nil)
}

// CompleteValid is Complete with a cache gate: an answer is stored, and a
// stored answer is replayed, only when valid accepts it. A rejected answer is
// still returned so the caller can apply its own fallback. A nil valid
// accepts any non-empty answer.
func (c *Completer) CompleteValid(ctx context.Context, prompt string, valid func(string) bool) (string, error) {
	if c == nil || c.Client == nil {
		return "", errors.New("completer not configured")
	}
	accept := func(out string) bool {
		return out != "" && (valid == nil || valid(out))
	}
	key := cache.KeyFrom(c.Model, prompt)
	if c.Cache != nil {
		if out, ok, _ := c.Cache.Get(ctx, key); ok {
			if accept(out) {
				log.Debug().Str("model", c.Model).Msg("completion cache hit")
				return out, nil
			}
			log.Debug().Str("model", c.Model).Msg("ignoring rejected cached completion")
		}
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// go-openai omits a zero temperature from the payload, which makes
		// servers fall back to their default of 1.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   c.MaxTokens,
		N:           1,
	}

	backoff := c.Backoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	attempts := c.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(i) * backoff):
			}
			log.Debug().Int("attempt", i+1).Err(lastErr).Msg("retrying completion")
		}
		out, err := c.once(ctx, req)
		if err == nil {
			if c.Cache != nil && accept(out) {
				_ = c.Cache.Save(ctx, key, c.Model, out)
			}
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("completion failed after %d attempt(s): %w", attempts, lastErr)
}

func (c *Completer) once(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	resp, err := c.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
