package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation     = errors.New("validation")
	ErrBadArrival     = fmt.Errorf("%w: arrival out of range", ErrValidation)
	ErrBadStudyLength = fmt.Errorf("%w: study minutes out of range", ErrValidation)
)

// InputLimits bounds the accepted planner input. Values come from config;
// zero-value limits accept the historical defaults.
type InputLimits struct {
	StudyMin    int // minimum study minutes (inclusive)
	StudyMax    int // maximum study minutes (inclusive)
	ArrivalStep int // allowed granularity of arrival minutes
}

// DefaultLimits mirrors the controls of the original planner UI.
func DefaultLimits() InputLimits {
	return InputLimits{StudyMin: 30, StudyMax: 60, ArrivalStep: 10}
}

// PlannerInput is the sole input to the schedule builder.
type PlannerInput struct {
	ArrivalHour   int  `json:"arrivalHour"`
	ArrivalMinute int  `json:"arrivalMinute"`
	HasDinner     bool `json:"hasDinner"`
	HasLaundry    bool `json:"hasLaundry"`
	StudyMinutes  int  `json:"studyMinutes"`
}

// ArrivalMinutes returns the arrival time as minutes since midnight.
func (in PlannerInput) ArrivalMinutes() int {
	return in.ArrivalHour*60 + in.ArrivalMinute
}

// Validate checks the input against the configured limits. A study duration
// of zero is accepted; the builder simply emits no study events for it.
func (in PlannerInput) Validate(lim InputLimits) error {
	if in.ArrivalHour < 0 || in.ArrivalHour > 23 {
		return fmt.Errorf("%w: hour %d", ErrBadArrival, in.ArrivalHour)
	}
	step := lim.ArrivalStep
	if step <= 0 {
		step = 1
	}
	if in.ArrivalMinute < 0 || in.ArrivalMinute > 59 || in.ArrivalMinute%step != 0 {
		return fmt.Errorf("%w: minute %d", ErrBadArrival, in.ArrivalMinute)
	}
	if in.StudyMinutes == 0 {
		return nil
	}
	if in.StudyMinutes < lim.StudyMin || in.StudyMinutes > lim.StudyMax {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrBadStudyLength, in.StudyMinutes, lim.StudyMin, lim.StudyMax)
	}
	return nil
}

// DailyRecord is the persisted snapshot of one planned day, keyed by date.
type DailyRecord struct {
	Date string `json:"date"` // YYYY-MM-DD
	PlannerInput
	TotalFreeTime  int             `json:"totalFreeTime"`
	Schedule       []ScheduleEvent `json:"schedule"`
	CompletedTasks []string        `json:"completedTasks"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ValidateDate checks the YYYY-MM-DD record key.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: date %q", ErrValidation, date)
	}
	return nil
}
