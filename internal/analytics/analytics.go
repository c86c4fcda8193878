// Package analytics folds stored daily records into the summary the
// analytics endpoint and the CLI report serve.
package analytics

import (
	"math"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
)

// WeekBucket is the mean free/study time of one 7-record chunk, date-ascending.
// Chunks are positional, not aligned to calendar weeks.
type WeekBucket struct {
	StartDate    string `json:"startDate"`
	AvgFreeTime  int    `json:"avgFreeTime"`
	AvgStudyTime int    `json:"avgStudyTime"`
}

// DayPoint is one sample of a per-day time series.
type DayPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// Summary aggregates a trailing window of daily records.
type Summary struct {
	TotalDays           int            `json:"totalDays"`
	AvgFreeTime         int            `json:"avgFreeTime"`
	AvgStudyTime        int            `json:"avgStudyTime"`
	AvgArrivalTime      string         `json:"avgArrivalTime"`
	DinnerRate          int            `json:"dinnerRate"`
	LaundryRate         int            `json:"laundryRate"`
	TaskCompletionStats map[string]int `json:"taskCompletionStats"`
	WeeklyTrend         []WeekBucket   `json:"weeklyTrend"`
	DailyFreeTime       []DayPoint     `json:"dailyFreeTime"`
	DailyStudyTime      []DayPoint     `json:"dailyStudyTime"`
}

// defaultArrival is reported when the window is empty: 19:00.
const defaultArrival = 19 * 60

// Aggregate computes the summary over records sorted date-ascending.
// An empty window yields neutral zero values, never NaN.
func Aggregate(records []domain.DailyRecord) Summary {
	s := Summary{
		AvgArrivalTime:      domain.Clock(defaultArrival),
		TaskCompletionStats: map[string]int{},
		WeeklyTrend:         []WeekBucket{},
		DailyFreeTime:       []DayPoint{},
		DailyStudyTime:      []DayPoint{},
	}
	n := len(records)
	if n == 0 {
		return s
	}
	s.TotalDays = n

	var freeSum, studySum, arrivalSum, dinnerDays, laundryDays int
	for _, r := range records {
		freeSum += r.TotalFreeTime
		studySum += r.StudyMinutes
		arrivalSum += r.ArrivalMinutes()
		if r.HasDinner {
			dinnerDays++
		}
		if r.HasLaundry {
			laundryDays++
		}
		for _, task := range r.CompletedTasks {
			s.TaskCompletionStats[task]++
		}
		s.DailyFreeTime = append(s.DailyFreeTime, DayPoint{Date: r.Date, Value: r.TotalFreeTime})
		s.DailyStudyTime = append(s.DailyStudyTime, DayPoint{Date: r.Date, Value: r.StudyMinutes})
	}

	s.AvgFreeTime = roundDiv(freeSum, n)
	s.AvgStudyTime = roundDiv(studySum, n)
	s.AvgArrivalTime = domain.Clock(roundDiv(arrivalSum, n))
	s.DinnerRate = roundDiv(dinnerDays*100, n)
	s.LaundryRate = roundDiv(laundryDays*100, n)

	for i := 0; i < n; i += 7 {
		chunk := records[i:min(i+7, n)]
		var f, st int
		for _, r := range chunk {
			f += r.TotalFreeTime
			st += r.StudyMinutes
		}
		s.WeeklyTrend = append(s.WeeklyTrend, WeekBucket{
			StartDate:    chunk[0].Date,
			AvgFreeTime:  roundDiv(f, len(chunk)),
			AvgStudyTime: roundDiv(st, len(chunk)),
		})
	}
	return s
}

// roundDiv divides and rounds to the nearest integer, away from zero on
// halves, so negative free-time averages round the same way the original did.
func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
