package planner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"planline/internal/domain"
)

// ParseError reports model output that could not be turned into a valid
// breakdown. The prober treats it exactly like a transport failure.
type ParseError struct {
	Reason string
}

func (e ParseError) Error() string {
	return "parse response: " + e.Reason
}

type rawTask struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	EstimatedHours *int    `json:"estimated_hours"`
	Priority       *string `json:"priority"`
}

type rawBreakdown struct {
	Reasoning *string   `json:"reasoning"`
	Tasks     []rawTask `json:"tasks"`
}

// ParseResponse interprets raw model output as a breakdown. It strips one
// layer of markdown code fencing, parses the JSON document, validates the
// required fields, assigns sequential ids and recomputes the total, ignoring
// any total the model may have supplied.
func ParseResponse(raw string) (domain.Breakdown, error) {
	cleaned := stripFence(strings.TrimSpace(raw))

	var doc rawBreakdown
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return domain.Breakdown{}, ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if doc.Reasoning == nil {
		return domain.Breakdown{}, ParseError{Reason: "missing reasoning"}
	}
	if len(doc.Tasks) == 0 {
		return domain.Breakdown{}, ParseError{Reason: "no tasks"}
	}

	tasks := make([]domain.Task, 0, len(doc.Tasks))
	total := 0
	for i, rt := range doc.Tasks {
		switch {
		case rt.Title == nil || *rt.Title == "":
			return domain.Breakdown{}, ParseError{Reason: fmt.Sprintf("task %d missing title", i+1)}
		case rt.Description == nil:
			return domain.Breakdown{}, ParseError{Reason: fmt.Sprintf("task %d missing description", i+1)}
		case rt.EstimatedHours == nil:
			return domain.Breakdown{}, ParseError{Reason: fmt.Sprintf("task %d missing estimated_hours", i+1)}
		case *rt.EstimatedHours < 1:
			return domain.Breakdown{}, ParseError{Reason: fmt.Sprintf("task %d estimated_hours must be positive", i+1)}
		case rt.Priority == nil:
			return domain.Breakdown{}, ParseError{Reason: fmt.Sprintf("task %d missing priority", i+1)}
		}
		priority := *rt.Priority
		if !domain.ValidPriority(priority) {
			priority = domain.PriorityMedium
		}
		tasks = append(tasks, domain.Task{
			ID:             strconv.Itoa(i + 1),
			Title:          *rt.Title,
			Description:    *rt.Description,
			EstimatedHours: *rt.EstimatedHours,
			Priority:       priority,
			Status:         domain.StatusPending,
		})
		total += *rt.EstimatedHours
	}
	return domain.Breakdown{
		Reasoning:           *doc.Reasoning,
		Tasks:               tasks,
		TotalEstimatedHours: total,
	}, nil
}

// stripFence removes one leading fence marker (tagged or bare) and one
// trailing fence. Not recursive: a single layer each, matching what
// generation backends wrap around JSON.
func stripFence(s string) string {
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
