package planner

import "fmt"

// BuildPrompt produces the instruction text for one breakdown request. The
// prompt is the only mechanism constraining the model's output shape; the
// parser treats violations as failures, not crashes.
func BuildPrompt(goal, timeframe string) string {
	if timeframe == "" {
		timeframe = "Flexible"
	}
	return fmt.Sprintf(promptTemplate, goal, timeframe)
}

const promptTemplate = `You are an expert project planner. Break this goal into 3-5 specific, actionable tasks with realistic time estimates.

GOAL: %s
TIMEFRAME: %s

Return ONLY valid JSON with this exact structure:
{
    "reasoning": "Brief explanation of your approach",
    "tasks": [
        {
            "title": "Specific, actionable task name",
            "description": "Detailed description of what needs to be done",
            "estimated_hours": 2,
            "priority": "high"
        }
    ]
}

Requirements:
- Make tasks practical and sequential
- Ensure total estimated hours are appropriate for the timeframe
- Return ONLY the JSON, no other text
- Use double quotes for JSON properties`
