// Package planner turns a free-text goal into a structured task breakdown.
// It probes a fixed list of generation models in order and, when every
// attempt fails, synthesizes a deterministic plan so the caller always gets
// a usable result.
package planner

import (
	"context"
	"log"

	"planline/internal/domain"
)

// Generator issues one generation call against a named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, model, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

type Planner struct {
	Generator Generator
	// Models is tried in order; the first success wins. Order encodes a
	// reliability preference and is never re-sorted here.
	Models []string
	// DefaultBudgetHours feeds the fallback when no timeframe is given.
	DefaultBudgetHours int
	Logger             *log.Logger
}

// New returns a Planner over the given generator and candidate list.
func New(g Generator, models []string, defaultBudgetHours int) Planner {
	return Planner{
		Generator:          g,
		Models:             models,
		DefaultBudgetHours: defaultBudgetHours,
	}
}

func (p Planner) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// BreakDown probes each candidate model until one yields a parseable plan.
// Every remote or parse failure is absorbed: when the list is exhausted the
// fallback synthesizer answers instead, so this never returns an error.
func (p Planner) BreakDown(ctx context.Context, goal, timeframe string) domain.Breakdown {
	prompt := BuildPrompt(goal, timeframe)
	for _, model := range p.Models {
		raw, err := p.Generator.Generate(ctx, model, prompt)
		if err != nil {
			p.logger().Printf("planner: %s failed: %s", model, truncate(err.Error(), 100))
			continue
		}
		breakdown, err := ParseResponse(raw)
		if err != nil {
			p.logger().Printf("planner: %s returned unusable output: %s", model, truncate(err.Error(), 100))
			continue
		}
		p.logger().Printf("planner: %s succeeded with %d tasks", model, len(breakdown.Tasks))
		return breakdown
	}
	p.logger().Printf("planner: all %d models failed, synthesizing plan", len(p.Models))
	return p.synthesize(goal, timeframe)
}

func (p Planner) synthesize(goal, timeframe string) domain.Breakdown {
	budget := p.DefaultBudgetHours
	if budget <= 0 {
		budget = defaultBudgetHours
	}
	return synthesizeWithBudget(goal, timeframe, budget)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
