package store

import (
	"encoding/json"
	"fmt"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
)

// Schedules and completed-task sets are stored as JSON text columns; the
// record row itself stays flat so date-range queries remain plain SQL.

func marshalSchedule(events []domain.ScheduleEvent) (string, error) {
	if events == nil {
		events = []domain.ScheduleEvent{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("marshal schedule: %w", err)
	}
	return string(b), nil
}

func unmarshalSchedule(s string) ([]domain.ScheduleEvent, error) {
	var events []domain.ScheduleEvent
	if err := json.Unmarshal([]byte(s), &events); err != nil {
		return nil, fmt.Errorf("unmarshal schedule: %w", err)
	}
	return events, nil
}

func marshalTasks(tasks []string) (string, error) {
	if tasks == nil {
		tasks = []string{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal completed tasks: %w", err)
	}
	return string(b), nil
}

func unmarshalTasks(s string) ([]string, error) {
	var tasks []string
	if err := json.Unmarshal([]byte(s), &tasks); err != nil {
		return nil, fmt.Errorf("unmarshal completed tasks: %w", err)
	}
	return tasks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
