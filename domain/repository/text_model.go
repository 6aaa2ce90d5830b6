package repository

import "context"

// ITextModel is a hosted language model answering a single prompt.
type ITextModel interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}
