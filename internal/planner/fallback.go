package planner

import (
	"fmt"
	"strconv"
	"strings"

	"planline/internal/domain"
)

const defaultBudgetHours = 8

// Synthesize builds a deterministic three-task plan for goal. It is total:
// any goal and timeframe produce a valid breakdown.
func Synthesize(goal, timeframe string) domain.Breakdown {
	return synthesizeWithBudget(goal, timeframe, defaultBudgetHours)
}

// synthesizeWithBudget splits the hour budget 25/50/25 across research,
// practice and application. Each share is floored but never below 1, so the
// total can exceed a tiny budget (budget 1 yields 1+1+1); that is accepted.
func synthesizeWithBudget(goal, timeframe string, budget int) domain.Breakdown {
	total := timeframeHours(timeframe, budget)
	tasks := []domain.Task{
		{
			ID:             "1",
			Title:          fmt.Sprintf("Research and plan %s", goal),
			Description:    "Initial research and planning phase",
			EstimatedHours: atLeastOne(total / 4),
			Priority:       domain.PriorityHigh,
			Status:         domain.StatusPending,
		},
		{
			ID:             "2",
			Title:          fmt.Sprintf("Practice core skills for %s", goal),
			Description:    "Hands-on practice and skill development",
			EstimatedHours: atLeastOne(total / 2),
			Priority:       domain.PriorityMedium,
			Status:         domain.StatusPending,
		},
		{
			ID:             "3",
			Title:          fmt.Sprintf("Apply and refine %s", goal),
			Description:    "Practical application and improvement",
			EstimatedHours: atLeastOne(total / 4),
			Priority:       domain.PriorityMedium,
			Status:         domain.StatusPending,
		},
	}
	sum := 0
	for _, t := range tasks {
		sum += t.EstimatedHours
	}
	return domain.Breakdown{
		Reasoning:           fmt.Sprintf("Smart task breakdown for '%s' (generation service unavailable)", goal),
		Tasks:               tasks,
		TotalEstimatedHours: sum,
	}
}

// TimeframeHours converts a free-text duration hint into an hour budget.
// Only the first recognized unit keyword applies; "1 week 2 days" reads as
// one week. An empty or unrecognized timeframe yields 8.
func TimeframeHours(timeframe string) int {
	return timeframeHours(timeframe, defaultBudgetHours)
}

func timeframeHours(timeframe string, fallback int) int {
	if strings.TrimSpace(timeframe) == "" {
		return fallback
	}
	lowered := strings.ToLower(timeframe)
	quantity := firstInteger(lowered)
	switch {
	case strings.Contains(lowered, "minute"):
		return atLeastOne(quantity / 60)
	case strings.Contains(lowered, "hour"):
		return quantity
	case strings.Contains(lowered, "day"):
		return quantity * 8
	case strings.Contains(lowered, "week"):
		return quantity * 40
	case strings.Contains(lowered, "month"):
		return quantity * 160
	default:
		return fallback
	}
}

// firstInteger returns the first whitespace-delimited integer token, or 1
// when the text has none.
func firstInteger(s string) int {
	for _, field := range strings.Fields(s) {
		if n, err := strconv.Atoi(field); err == nil && n >= 0 {
			return n
		}
	}
	return 1
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
