package domain

import (
	"errors"
	"fmt"
	"strings"
)

// EventKind classifies timeline entries.
type EventKind string

const (
	KindMarker EventKind = "marker" // zero-duration anchor (arrival, bed)
	KindTask   EventKind = "task"   // mandatory or flexible activity
	KindFree   EventKind = "free"   // unscheduled slack
)

// ScheduleEvent is one entry of a generated evening timeline.
type ScheduleEvent struct {
	ID             string    `json:"id"`
	StartMinute    int       `json:"time"`
	DurationMinute int       `json:"duration"`
	Label          string    `json:"label"`
	Kind           EventKind `json:"type"`
}

// Event labels, as shown on the timeline and in reminder bodies.
const (
	LabelArrival = "帰宅"
	LabelDinner  = "夕食（調理・食事）"
	LabelBath    = "お風呂"
	LabelLaundry = "洗濯"
	LabelStudy   = "英語学習"
	LabelFree    = "自由時間"
	LabelBed     = "就寝"
)

const (
	dinnerDuration  = 60
	bathDuration    = 60
	laundryDuration = 30

	// Dinner never starts before 18:30 under the split policy.
	dinnerEarliest = 18*60 + 30
	// The fixed-bath policy anchors the bath at 21:00 when the evening allows.
	idealBathStart = 21 * 60
)

// Policy selects the slot-filling strategy for BuildSchedule.
type Policy string

const (
	// PolicySplit delays dinner to 18:30 and splits study across the
	// windows before dinner and after the bath, preferring the latter.
	PolicySplit Policy = "split"
	// PolicyFixedBath starts dinner at arrival, anchors the bath at 21:00
	// and places a single study block after it.
	PolicyFixedBath Policy = "fixed-bath"
)

var ErrUnknownPolicy = errors.New("unknown schedule policy")

// ParsePolicy maps a config/flag value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.TrimSpace(strings.ToLower(s))) {
	case PolicySplit:
		return PolicySplit, nil
	case PolicyFixedBath:
		return PolicyFixedBath, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// BuildSchedule deterministically derives the evening timeline for the given
// input. The result always begins with an arrival marker at the input-derived
// minute and ends with a bed marker pinned to 23:00; everything in between is
// contiguous. It performs no I/O and never fails on well-formed input.
func BuildSchedule(in PlannerInput, p Policy) []ScheduleEvent {
	if p == PolicyFixedBath {
		return buildFixedBath(in)
	}
	return buildSplit(in)
}

func buildSplit(in PlannerInput) []ScheduleEvent {
	events := make([]ScheduleEvent, 0, 9)
	cur := in.ArrivalMinutes()

	events = append(events, ScheduleEvent{
		ID: "arrival", StartMinute: cur, Label: LabelArrival, Kind: KindMarker,
	})

	dinnerStart := cur
	dinnerEnd := cur
	if in.HasDinner {
		dinnerStart = max(cur, dinnerEarliest)
		dinnerEnd = dinnerStart + dinnerDuration
	}

	bathEnd := dinnerEnd + bathDuration
	laundryEnd := bathEnd
	if in.HasLaundry {
		laundryEnd += laundryDuration
	}

	// Study fills the window after the bath first, then spills into the
	// window between arrival and dinner. Negative windows hold nothing.
	before := dinnerStart - cur
	after := BedTime - laundryEnd

	remaining := in.StudyMinutes
	studyAfter := 0
	if after > 0 && remaining > 0 {
		studyAfter = min(remaining, after)
		remaining -= studyAfter
	}
	studyBefore := 0
	if before > 0 && remaining > 0 {
		studyBefore = min(remaining, before)
	}

	freeBefore := before - studyBefore
	freeAfter := after - studyAfter
	twoSessions := studyBefore > 0 && studyAfter > 0

	if studyBefore > 0 {
		events = append(events, ScheduleEvent{
			ID: "study1", StartMinute: cur, DurationMinute: studyBefore,
			Label: studyLabel(twoSessions, "①"), Kind: KindTask,
		})
		cur += studyBefore
	}
	if freeBefore > 0 {
		events = append(events, ScheduleEvent{
			ID: "free1", StartMinute: cur, DurationMinute: freeBefore,
			Label: LabelFree, Kind: KindFree,
		})
		cur += freeBefore
	}
	if in.HasDinner {
		events = append(events, ScheduleEvent{
			ID: "dinner", StartMinute: dinnerStart, DurationMinute: dinnerDuration,
			Label: LabelDinner, Kind: KindTask,
		})
		cur = dinnerEnd
	}
	events = append(events, ScheduleEvent{
		ID: "bath", StartMinute: cur, DurationMinute: bathDuration,
		Label: LabelBath, Kind: KindTask,
	})
	cur += bathDuration
	if in.HasLaundry {
		events = append(events, ScheduleEvent{
			ID: "laundry", StartMinute: cur, DurationMinute: laundryDuration,
			Label: LabelLaundry, Kind: KindTask,
		})
		cur += laundryDuration
	}
	if studyAfter > 0 {
		events = append(events, ScheduleEvent{
			ID: "study2", StartMinute: cur, DurationMinute: studyAfter,
			Label: studyLabel(twoSessions, "②"), Kind: KindTask,
		})
		cur += studyAfter
	}
	if freeAfter > 0 {
		events = append(events, ScheduleEvent{
			ID: "free2", StartMinute: cur, DurationMinute: freeAfter,
			Label: LabelFree, Kind: KindFree,
		})
	}

	events = append(events, ScheduleEvent{
		ID: "bed", StartMinute: BedTime, Label: LabelBed, Kind: KindMarker,
	})
	return events
}

func buildFixedBath(in PlannerInput) []ScheduleEvent {
	events := make([]ScheduleEvent, 0, 8)
	cur := in.ArrivalMinutes()

	events = append(events, ScheduleEvent{
		ID: "arrival", StartMinute: cur, Label: LabelArrival, Kind: KindMarker,
	})

	if in.HasDinner {
		events = append(events, ScheduleEvent{
			ID: "dinner", StartMinute: cur, DurationMinute: dinnerDuration,
			Label: LabelDinner, Kind: KindTask,
		})
		cur += dinnerDuration
	}

	// Wait for the ideal bath time when the evening allows it.
	if gap := idealBathStart - cur; gap > 0 {
		events = append(events, ScheduleEvent{
			ID: "free1", StartMinute: cur, DurationMinute: gap,
			Label: LabelFree, Kind: KindFree,
		})
		cur += gap
	}

	events = append(events, ScheduleEvent{
		ID: "bath", StartMinute: cur, DurationMinute: bathDuration,
		Label: LabelBath, Kind: KindTask,
	})
	cur += bathDuration
	if in.HasLaundry {
		events = append(events, ScheduleEvent{
			ID: "laundry", StartMinute: cur, DurationMinute: laundryDuration,
			Label: LabelLaundry, Kind: KindTask,
		})
		cur += laundryDuration
	}
	if in.StudyMinutes > 0 {
		events = append(events, ScheduleEvent{
			ID: "study", StartMinute: cur, DurationMinute: in.StudyMinutes,
			Label: LabelStudy, Kind: KindTask,
		})
		cur += in.StudyMinutes
	}
	if rest := BedTime - cur; rest > 0 {
		events = append(events, ScheduleEvent{
			ID: "free2", StartMinute: cur, DurationMinute: rest,
			Label: LabelFree, Kind: KindFree,
		})
	}

	events = append(events, ScheduleEvent{
		ID: "bed", StartMinute: BedTime, Label: LabelBed, Kind: KindMarker,
	})
	return events
}

func studyLabel(two bool, suffix string) string {
	if two {
		return LabelStudy + suffix
	}
	return LabelStudy
}

// TotalFreeTime derives the free minutes of a generated schedule from the
// bed-to-arrival span minus every task duration. Unlike summing the emitted
// Free events, this legitimately goes negative when tasks overrun bedtime.
func TotalFreeTime(events []ScheduleEvent) int {
	if len(events) == 0 {
		return 0
	}
	tasks := 0
	for _, e := range events {
		if e.Kind == KindTask {
			tasks += e.DurationMinute
		}
	}
	return BedTime - events[0].StartMinute - tasks
}

// Overtime reports whether the schedule overruns the fixed bedtime.
func Overtime(events []ScheduleEvent) bool {
	return TotalFreeTime(events) < 0
}
