package server

import (
	"net/http"
	"strconv"

	"github.com/soudousya-lab/weekday-planner/internal/analytics"
	"github.com/soudousya-lab/weekday-planner/internal/domain"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.badRequest(w, "invalid days")
			return
		}
		days = n
	}

	startDate := s.now().AddDate(0, 0, -days).Format("2006-01-02")
	records, err := s.records.ListRecords(r.Context(), startDate, "", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The store lists newest first; the aggregator wants date-ascending.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"analytics": analytics.Aggregate(records)})
}

// handleBuildSchedule runs the schedule builder server-side for the given
// query parameters and returns the timeline with its derived metrics.
func (s *Server) handleBuildSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	in, err := parsePlannerInput(q.Get("arrivalHour"), q.Get("arrivalMinute"),
		q.Get("hasDinner"), q.Get("hasLaundry"), q.Get("studyMinutes"))
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if err := in.Validate(s.limits); err != nil {
		s.writeError(w, err)
		return
	}

	policy := s.policy
	if raw := q.Get("policy"); raw != "" {
		p, err := domain.ParsePolicy(raw)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		policy = p
	}

	events := domain.BuildSchedule(in, policy)
	free := domain.TotalFreeTime(events)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"schedule":      events,
		"totalFreeTime": free,
		"isOvertime":    free < 0,
		"policy":        policy,
	})
}

func parsePlannerInput(hour, minute, dinner, laundry, study string) (domain.PlannerInput, error) {
	var in domain.PlannerInput
	var err error

	if in.ArrivalHour, err = strconv.Atoi(hour); err != nil {
		return in, errInvalidParam("arrivalHour")
	}
	if in.ArrivalMinute, err = strconv.Atoi(minute); err != nil {
		return in, errInvalidParam("arrivalMinute")
	}
	if study != "" {
		if in.StudyMinutes, err = strconv.Atoi(study); err != nil {
			return in, errInvalidParam("studyMinutes")
		}
	}
	if dinner != "" {
		if in.HasDinner, err = strconv.ParseBool(dinner); err != nil {
			return in, errInvalidParam("hasDinner")
		}
	}
	if laundry != "" {
		if in.HasLaundry, err = strconv.ParseBool(laundry); err != nil {
			return in, errInvalidParam("hasLaundry")
		}
	}
	return in, nil
}

type paramError string

func (e paramError) Error() string { return "invalid parameter: " + string(e) }

func errInvalidParam(name string) error { return paramError(name) }
