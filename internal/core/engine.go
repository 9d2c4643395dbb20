package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/ai"
)

// Answer is one model round-trip after parsing.
type Answer struct {
	Reply    *ai.Reply
	Parsed   ai.ParsedResponse
	Degraded bool
}

// Presenter shows an answer to the user before its command is gated.
type Presenter interface {
	ShowAnswer(a *Answer)
}

// Engine orchestrates the AI workflow: query, parse, present, gate.
type Engine struct {
	ai     ai.Provider
	gate   *Gate
	logger *zap.Logger
}

// NewEngine creates a new engine. The logger may be nil.
func NewEngine(provider ai.Provider, gate *Gate, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ai:     provider,
		gate:   gate,
		logger: logger,
	}
}

// Ask sends req to the model. It never fails: transport and auth errors
// become the reply text so the caller can display them like any answer.
func (e *Engine) Ask(ctx context.Context, req ai.Request) *Answer {
	started := time.Now()
	reply, err := e.ai.Query(ctx, req)
	if err != nil {
		e.logger.Warn("model query failed",
			zap.String("model", req.Model),
			zap.Duration("latency", time.Since(started)),
			zap.Error(err))
		reply = &ai.Reply{Text: "⚠️ Error calling model: " + err.Error(), Model: req.Model}
		return &Answer{Reply: reply, Parsed: ai.ParseResponse(reply.Text), Degraded: true}
	}

	e.logger.Info("model replied",
		zap.String("model", reply.Model),
		zap.Duration("latency", time.Since(started)),
		zap.Int("reply_bytes", len(reply.Text)))

	return &Answer{Reply: reply, Parsed: ai.ParseResponse(reply.Text)}
}

// Process handles a prompt from query to gated execution. The answer is
// returned even when running its command failed.
func (e *Engine) Process(ctx context.Context, req ai.Request, presenter Presenter) (*Answer, error) {
	answer := e.Ask(ctx, req)
	if presenter != nil {
		presenter.ShowAnswer(answer)
	}

	command := answer.Parsed.RunnableCommand()
	if answer.Degraded || command == "" || e.gate == nil {
		return answer, nil
	}

	if _, err := e.gate.MaybeRun(ctx, command, answer.Parsed.Verdict); err != nil {
		return answer, err
	}
	return answer, nil
}
