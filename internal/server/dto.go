package server

import (
	"planline/internal/domain"
	"planline/internal/gemini"
)

// Request payloads

type BreakdownRequest struct {
	Goal      string  `json:"goal"`
	Timeframe *string `json:"timeframe,omitempty"`
}

// Response payloads

type TaskResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	EstimatedHours int    `json:"estimated_hours"`
	Priority       string `json:"priority" enum:"high,medium,low"`
	Status         string `json:"status"`
}

type BreakdownResponse struct {
	GoalID              string         `json:"goal_id"`
	Tasks               []TaskResponse `json:"tasks"`
	Reasoning           string         `json:"reasoning"`
	TotalEstimatedHours int            `json:"total_estimated_hours"`
}

type ModelResponse struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"display_name,omitempty"`
	SupportedGenerationMethods []string `json:"supported_generation_methods,omitempty"`
}

type ModelListResponse struct {
	Models []ModelResponse `json:"models"`
}

// Conversion helpers

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse(t)
}

func breakdownResponse(goalID string, b domain.Breakdown) BreakdownResponse {
	tasks := make([]TaskResponse, 0, len(b.Tasks))
	for _, t := range b.Tasks {
		tasks = append(tasks, taskResponse(t))
	}
	return BreakdownResponse{
		GoalID:              goalID,
		Tasks:               tasks,
		Reasoning:           b.Reasoning,
		TotalEstimatedHours: b.TotalEstimatedHours,
	}
}

func modelListResponse(models []gemini.ModelInfo) ModelListResponse {
	res := ModelListResponse{Models: []ModelResponse{}}
	for _, m := range models {
		res.Models = append(res.Models, ModelResponse{
			Name:                       m.Name,
			DisplayName:                m.DisplayName,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		})
	}
	return res
}
