// Package explain rewrites deterministic fact strings into short prose
// using a local LLM.
//
// The explainer is strictly optional: any failure (server down, timeout,
// empty completion) falls back to the verbatim facts, so deterministic
// answers are never blocked by the model.
package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// promptTemplate constrains the model to restating the facts. It must never
// add, infer, or explain.
const promptTemplate = `You are a controlled explanation engine.

Rules:
- Use ONLY the information in Facts
- Do NOT add new facts
- Do NOT explain causes
- Do NOT infer meaning
- Keep the explanation short and neutral

Facts:
%s

Rewrite the facts in simple sentences.`

// Config holds explainer configuration.
type Config struct {
	// Enabled toggles the rewrite; when false Explain is a passthrough.
	Enabled bool

	// ServerURL is the Ollama server URL.
	ServerURL string

	// Model is the Ollama model name.
	Model string

	// Timeout bounds one rewrite call.
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "mistral"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Explainer rewrites fact strings via Ollama.
type Explainer struct {
	config Config
	llm    llms.Model
	logger *zap.Logger
}

// New creates an explainer. A client construction failure disables the
// rewrite rather than failing the service.
func New(cfg Config, logger *zap.Logger) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	e := &Explainer{config: cfg, logger: logger.Named("explain")}
	if !cfg.Enabled {
		return e
	}

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		logger.Warn("ollama client unavailable, answers stay verbatim", zap.Error(err))
		return e
	}
	e.llm = llm
	return e
}

// Explain rewrites facts into prose, returning the verbatim facts on any
// failure.
func (e *Explainer) Explain(ctx context.Context, facts string) string {
	if e.llm == nil {
		return facts
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, facts)
	completion, err := llms.GenerateFromSinglePrompt(ctx, e.llm, prompt,
		llms.WithTemperature(0))
	if err != nil {
		e.logger.Warn("explanation rewrite failed, returning facts verbatim", zap.Error(err))
		return facts
	}

	completion = strings.TrimSpace(completion)
	if completion == "" {
		return facts
	}
	return completion
}

// Warmup issues a throwaway rewrite so the model is resident before the
// first real question. Failures are ignored.
func (e *Explainer) Warmup(ctx context.Context) {
	if e.llm == nil {
		return
	}
	_ = e.Explain(ctx, "warmup")
}
