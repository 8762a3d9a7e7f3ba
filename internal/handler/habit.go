package handler

import (
	"net/http"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/ctxkeys"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/service"
)

const defaultLogRange = 30

type HabitHandler struct {
	habitService *service.HabitService
	cal          *calendar.Calendar
}

func NewHabitHandler(habitService *service.HabitService, cal *calendar.Calendar) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
		cal:          cal,
	}
}

// List returns every habit, or only active ones with ?active=true.
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		habits []*model.Habit
		err    error
	)
	userID := ctxkeys.UserID(r.Context())
	if r.URL.Query().Get("active") == "true" {
		habits, err = h.habitService.ActiveHabits(r.Context(), userID)
	} else {
		habits, err = h.habitService.Habits(r.Context(), userID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.HabitInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	habit, err := h.habitService.Create(r.Context(), ctxkeys.UserID(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	habit, err := h.habitService.Habit(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.HabitUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	habit, err := h.habitService.Update(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.habitService.Delete(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle takes an optional {"date": "YYYY-MM-DD"} body and defaults to today.
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.habitService.Toggle(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"), in.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Logs lists logs between ?start= and ?end=, defaulting to the last 30 days.
func (h *HabitHandler) Logs(w http.ResponseWriter, r *http.Request) {
	end := r.URL.Query().Get("end")
	if end == "" {
		end = h.cal.Today()
	}
	start := r.URL.Query().Get("start")
	if start == "" {
		var err error
		start, err = calendar.AddDays(end, -(defaultLogRange - 1))
		if err != nil {
			// end is malformed, let validation report it
			start = end
		}
	}

	logs, err := h.habitService.Logs(r.Context(), ctxkeys.UserID(r.Context()), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *HabitHandler) TodayLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.habitService.TodayLogs(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
