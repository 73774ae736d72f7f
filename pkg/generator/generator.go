// Package generator turns retrieved context and user input into answers, mermaid graphs
// and point-wise summaries using an LLM provider.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/llm"
)

// ErrEmptyResponse is returned when the model answers with nothing usable.
var ErrEmptyResponse = errors.New("response not found, try again later")

// Difficulty selects the prompt variant for graphs and summaries.
type Difficulty int

const (
	Easy   Difficulty = 1
	Medium Difficulty = 2
	Hard   Difficulty = 3
)

// Normalize maps anything outside 1..3 to Easy.
func (d Difficulty) Normalize() Difficulty {
	if d < Easy || d > Hard {
		return Easy
	}
	return d
}

func (d Difficulty) String() string {
	switch d.Normalize() {
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "easy"
	}
}

type Generator struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	opts     []llm.Option
}

func New(provider llm.LLMProvider, log logger.ILogger, opts ...llm.Option) *Generator {
	return &Generator{provider: provider, logger: log, opts: opts}
}

// Answer replies to question using the retrieved context and the caller's chat history.
func (g *Generator) Answer(ctx context.Context, retrieved, question, history string) (string, error) {
	system := render(qaPrompt.system, map[string]string{"context": retrieved})
	human := render(qaPrompt.human, map[string]string{"chat_history": history, "question": question})
	return g.run(ctx, "ANSWER", system, human)
}

// Graph returns mermaid notation describing scenario.
func (g *Generator) Graph(ctx context.Context, scenario string, difficulty Difficulty) (string, error) {
	p := graphPrompts[difficulty.Normalize()-1]
	return g.run(ctx, "GRAPH", p.system, render(p.human, map[string]string{"scenario": scenario}))
}

// Summary explains content point by point.
func (g *Generator) Summary(ctx context.Context, content string, difficulty Difficulty) (string, error) {
	p := summaryPrompts[difficulty.Normalize()-1]
	return g.run(ctx, "SUMMARY", p.system, render(p.human, map[string]string{"para": content}))
}

func (g *Generator) run(ctx context.Context, kind, system, human string) (string, error) {
	start := time.Now()
	reply, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: human},
	}, g.opts...)
	if err != nil {
		g.logger.Error("GENERATOR", "LLM call failed", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
		return "", fmt.Errorf("generate %s: %w", strings.ToLower(kind), err)
	}

	g.logger.Debug("GENERATOR", "LLM call finished", map[string]interface{}{
		"kind":        kind,
		"duration_ms": time.Since(start).Milliseconds(),
		"reply_len":   len(reply),
	})

	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

// render substitutes {name} placeholders in a single pass.
func render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
