package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
	"github.com/soudousya-lab/weekday-planner/internal/store"
)

type saveRecordRequest struct {
	Date           string                 `json:"date"`
	ArrivalHour    *int                   `json:"arrivalHour"`
	ArrivalMinute  *int                   `json:"arrivalMinute"`
	HasDinner      bool                   `json:"hasDinner"`
	HasLaundry     bool                   `json:"hasLaundry"`
	StudyMinutes   int                    `json:"studyMinutes"`
	TotalFreeTime  int                    `json:"totalFreeTime"`
	Schedule       []domain.ScheduleEvent `json:"schedule"`
	CompletedTasks []string               `json:"completedTasks"`
	Notes          string                 `json:"notes"`
}

func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	var req saveRecordRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.Date == "" || req.ArrivalHour == nil || req.ArrivalMinute == nil {
		s.badRequest(w, "missing required fields")
		return
	}
	if err := domain.ValidateDate(req.Date); err != nil {
		s.writeError(w, err)
		return
	}

	rec := domain.DailyRecord{
		Date: req.Date,
		PlannerInput: domain.PlannerInput{
			ArrivalHour:   *req.ArrivalHour,
			ArrivalMinute: *req.ArrivalMinute,
			HasDinner:     req.HasDinner,
			HasLaundry:    req.HasLaundry,
			StudyMinutes:  req.StudyMinutes,
		},
		TotalFreeTime:  req.TotalFreeTime,
		Schedule:       req.Schedule,
		CompletedTasks: req.CompletedTasks,
		Notes:          req.Notes,
	}
	if err := rec.PlannerInput.Validate(s.limits); err != nil {
		s.writeError(w, err)
		return
	}

	err := store.WithRetry(r.Context(), retryAttempts, retryBackoff, func(ctx context.Context) error {
		return s.records.UpsertRecord(ctx, &rec)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if err := domain.ValidateDate(date); err != nil {
		s.writeError(w, err)
		return
	}

	rec, err := s.records.GetRecord(r.Context(), date)
	if err != nil {
		// An absent date is an empty result, not a 404; the client probes
		// every day it renders.
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSON(w, http.StatusOK, map[string]any{"record": nil})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.badRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	records, err := s.records.ListRecords(r.Context(), q.Get("startDate"), q.Get("endDate"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.DailyRecord{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if err := domain.ValidateDate(date); err != nil {
		s.writeError(w, err)
		return
	}

	err := store.WithRetry(r.Context(), retryAttempts, retryBackoff, func(ctx context.Context) error {
		return s.records.DeleteRecord(ctx, date)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
