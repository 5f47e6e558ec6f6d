package domain

// Priorities accepted on a task.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// StatusPending is the only status this service ever assigns; nothing here
// mutates a task after it is returned.
const StatusPending = "pending"

type Task struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	EstimatedHours int    `json:"estimated_hours"`
	Priority       string `json:"priority" enum:"high,medium,low"`
	Status         string `json:"status"`
}

// Breakdown is a complete plan for one goal. TotalEstimatedHours is always
// the sum of the task hours; it is computed here, never copied from a model.
type Breakdown struct {
	Reasoning           string `json:"reasoning"`
	Tasks               []Task `json:"tasks"`
	TotalEstimatedHours int    `json:"total_estimated_hours"`
}

// ValidPriority reports whether p is one of the accepted priority values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
