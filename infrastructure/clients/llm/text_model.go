package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"benchly/domain/repository"
	"benchly/infrastructure/configuration"
	"benchly/infrastructure/logger"
	"benchly/infrastructure/metrics"

	"github.com/anatolykoptev/go-kit/llm"
)

// CompleteFunc sends one prompt to one model.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// TextModel routes prompts to a client per model name over an OpenAI
// compatible chat API.
type TextModel struct {
	models map[string]CompleteFunc
}

// NewTextModel builds one chat client per configured model.
func NewTextModel(cfg configuration.LLM) repository.ITextModel {
	models := make(map[string]CompleteFunc)
	for _, name := range []string{cfg.FlashModel, cfg.ProModel} {
		if name == "" {
			continue
		}
		client := llm.NewClient(cfg.APIBase, cfg.APIKey, name,
			llm.WithMaxTokens(cfg.MaxTokens),
			llm.WithTemperature(cfg.Temperature),
			llm.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		)
		models[name] = func(ctx context.Context, prompt string) (string, error) {
			return client.Complete(ctx, "", prompt,
				llm.WithChatTemperature(cfg.Temperature),
				llm.WithChatMaxTokens(cfg.MaxTokens),
			)
		}
	}
	return NewTextModelWith(models)
}

func NewTextModelWith(models map[string]CompleteFunc) *TextModel {
	return &TextModel{models: models}
}

func (t *TextModel) Complete(ctx context.Context, model, prompt string) (string, error) {
	complete, ok := t.models[model]
	if !ok {
		metrics.TextModelRequestsTotal.WithLabelValues(model, "unknown_model").Inc()
		return "", fmt.Errorf("llm: model %q is not configured", model)
	}

	start := time.Now()
	answer, err := complete(ctx, prompt)
	if err != nil {
		metrics.TextModelRequestsTotal.WithLabelValues(model, "error").Inc()
		logger.GetLogger().WithFields(map[string]interface{}{
			"model":   model,
			"error":   err,
			"elapsed": time.Since(start).String(),
		}).Error("Language model call failed")
		return "", fmt.Errorf("llm: %s: %w", model, err)
	}
	metrics.TextModelRequestsTotal.WithLabelValues(model, "ok").Inc()
	return answer, nil
}
