package ai

import (
	"context"
	"errors"
)

// ErrNoChoices is returned when the backend answers without any completion.
var ErrNoChoices = errors.New("no choices in response")

// Request is a single prompt sent to the model.
type Request struct {
	Prompt string
	Model  string
	APIKey string
}

// Reply is the model's answer together with the model that produced it.
type Reply struct {
	Text  string
	Model string
}

// Provider defines the interface for AI backends
type Provider interface {
	Query(ctx context.Context, req Request) (*Reply, error)
}

// ContextPrompt prefixes prompt with the output of the previous step.
func ContextPrompt(lastOutput, prompt string) string {
	return "Previous output:\n" + lastOutput + "\n\nNew prompt:\n" + prompt
}
