package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/manager"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/tracker"
	"github.com/julianstephens/habitreel/internal/utils"
)

const defaultHistoryDays = 7

var errBadRequest = errors.New("bad request")

func (s *Server) registerRoutes(mux *http.ServeMux) {
	rr := s.routes

	Handle(mux, rr, "GET /api/routes", "List API routes", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rr.List())
	})

	Handle(mux, rr, "GET /api/habits", "List habits with today's status (?sort=&include_inactive=&include_deleted=)", "", s.listHabits)
	Handle(mux, rr, "POST /api/habits", "Create habit",
		`{"name":"Stretch","frequency":["monday","wednesday","friday"],"time_of_day":"morning"}`, s.createHabit)
	Handle(mux, rr, "GET /api/habits/{id}", "Get habit status", "", s.getHabit)
	Handle(mux, rr, "PATCH /api/habits/{id}", "Update habit fields", `{"name":"Yoga","frequency":["daily"]}`, s.updateHabit)
	Handle(mux, rr, "DELETE /api/habits/{id}", "Delete habit", "", s.deleteHabit)
	Handle(mux, rr, "POST /api/habits/{id}/restore", "Restore deleted habit", "", s.restoreHabit)
	Handle(mux, rr, "POST /api/habits/{id}/toggle", "Toggle completion for a day (default today)", `{"date":"2025-03-12"}`, s.toggleHabit)
	Handle(mux, rr, "GET /api/habits/{id}/history", "Day records for a range (?start=&end=)", "", s.habitHistory)
	Handle(mux, rr, "GET /api/habits/{id}/next", "Next due day", "", s.nextDue)
	Handle(mux, rr, "GET /api/habits/{id}/reward", "Today's reward", "", s.habitReward)
	Handle(mux, rr, "POST /api/habits/{id}/reward/reveal", "Reveal today's reward", "", s.revealReward)
	Handle(mux, rr, "GET /api/reports/weekly", "Weekly report for the current week", "", s.weeklyReport)
	Handle(mux, rr, "GET /api/preferences/sort", "Get sort preference", "", s.getSort)
	Handle(mux, rr, "PUT /api/preferences/sort", "Set sort preference", `{"strategy":"streak"}`, s.putSort)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such endpoint")
	})
}

type habitRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Color         *string  `json:"color"`
	Icon          *string  `json:"icon"`
	Frequency     []string `json:"frequency"`
	TimeOfDay     *string  `json:"time_of_day"`
	StartDate     *string  `json:"start_date"`
	RewardEnabled *bool    `json:"reward_enabled"`
	Active        *bool    `json:"active"`
}

type toggleRequest struct {
	Date string `json:"date"`
}

type toggleResponse struct {
	Habit     models.Habit        `json:"habit"`
	Day       string              `json:"day"`
	Completed bool                `json:"completed"`
	Streak    string              `json:"streak"`
	Reward    *models.PhotoReward `json:"reward,omitempty"`
}

type historyResponse struct {
	Habit models.Habit       `json:"habit"`
	Days  []models.DayRecord `json:"days"`
}

type nextResponse struct {
	HabitID string `json:"habit_id"`
	NextDue string `json:"next_due"`
	InDays  int    `json:"in_days"`
}

type rewardResponse struct {
	HabitID  string              `json:"habit_id"`
	Date     string              `json:"date"`
	Reward   *models.PhotoReward `json:"reward"`
	Revealed bool                `json:"revealed"`
}

type sortResponse struct {
	Strategy sorting.Strategy `json:"strategy"`
	Label    string           `json:"label"`
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	// An empty strategy lets the manager apply the saved preference.
	var strategy sorting.Strategy
	var err error
	if raw := q.Get("sort"); raw != "" {
		if strategy, err = sorting.Parse(raw); err != nil {
			writeErr(w, err)
			return
		}
	}
	var f manager.Filter
	if f.IncludeInactive, err = queryBool(q.Get("include_inactive")); err != nil {
		writeErr(w, err)
		return
	}
	if f.IncludeDeleted, err = queryBool(q.Get("include_deleted")); err != nil {
		writeErr(w, err)
		return
	}

	ev := s.mgr.Evaluator()
	habits, err := s.mgr.List(ev, f, strategy)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.Statuses(ev, habits))
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var body habitRequest
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, err)
		return
	}
	in := manager.HabitInput{
		Name:          deref(body.Name),
		Description:   deref(body.Description),
		Color:         deref(body.Color),
		Icon:          deref(body.Icon),
		Frequency:     body.Frequency,
		TimeOfDay:     constants.TimeOfDay(deref(body.TimeOfDay)),
		StartDate:     deref(body.StartDate),
		RewardEnabled: body.RewardEnabled != nil && *body.RewardEnabled,
	}

	s.writes.Lock()
	habit, err := s.mgr.Create(in)
	s.writes.Unlock()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.mgr.Status(s.mgr.Evaluator(), habit))
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	habit, err := s.mgr.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.Status(s.mgr.Evaluator(), habit))
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	var body habitRequest
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, err)
		return
	}
	patch := manager.HabitPatch{
		Name:          body.Name,
		Description:   body.Description,
		Color:         body.Color,
		Icon:          body.Icon,
		Frequency:     body.Frequency,
		StartDate:     body.StartDate,
		RewardEnabled: body.RewardEnabled,
		Active:        body.Active,
	}
	if body.TimeOfDay != nil {
		tod := constants.TimeOfDay(*body.TimeOfDay)
		patch.TimeOfDay = &tod
	}

	s.writes.Lock()
	habit, err := s.mgr.Update(r.PathValue("id"), patch)
	s.writes.Unlock()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.Status(s.mgr.Evaluator(), habit))
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	s.writes.Lock()
	habit, err := s.mgr.Delete(r.PathValue("id"))
	s.writes.Unlock()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (s *Server) restoreHabit(w http.ResponseWriter, r *http.Request) {
	s.writes.Lock()
	habit, err := s.mgr.Restore(r.PathValue("id"))
	s.writes.Unlock()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.Status(s.mgr.Evaluator(), habit))
}

func (s *Server) toggleHabit(w http.ResponseWriter, r *http.Request) {
	var body toggleRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, err)
			return
		}
	}
	ev := s.mgr.Evaluator()
	day, err := parseDay(ev, body.Date, ev.Today())
	if err != nil {
		writeErr(w, err)
		return
	}

	s.writes.Lock()
	res, err := s.mgr.RecordToggle(r.PathValue("id"), day)
	s.writes.Unlock()
	if err != nil {
		writeErr(w, err)
		return
	}
	// The provider call runs outside the write lock.
	s.mgr.UnlockReward(r.Context(), res)
	writeJSON(w, http.StatusOK, toggleResponse{
		Habit:     res.Habit,
		Day:       res.Day,
		Completed: res.Completed,
		Streak:    tracker.StreakText(res.Habit.Streak),
		Reward:    res.Reward,
	})
}

func (s *Server) habitHistory(w http.ResponseWriter, r *http.Request) {
	ev := s.mgr.Evaluator()
	q := r.URL.Query()
	end, err := parseDay(ev, q.Get("end"), ev.Today())
	if err != nil {
		writeErr(w, err)
		return
	}
	start, err := parseDay(ev, q.Get("start"), utils.AddDays(end, -(defaultHistoryDays-1), ev.Location()))
	if err != nil {
		writeErr(w, err)
		return
	}
	if start.After(end) {
		writeErr(w, fmt.Errorf("%w: start %s is after end %s", errBadRequest,
			start.Format(constants.DateFormat), end.Format(constants.DateFormat)))
		return
	}

	habit, days, err := s.mgr.History(ev, r.PathValue("id"), start, end)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Habit: habit, Days: days})
}

func (s *Server) nextDue(w http.ResponseWriter, r *http.Request) {
	habit, err := s.mgr.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	ev := s.mgr.Evaluator()
	next, err := ev.NextDueDateFromToday(habit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nextResponse{
		HabitID: habit.ID,
		NextDue: next.Format(constants.DateFormat),
		InDays:  daysBetween(ev.Today(), next),
	})
}

func (s *Server) habitReward(w http.ResponseWriter, r *http.Request) {
	ev := s.mgr.Evaluator()
	habit, photo, revealed, err := s.mgr.Reward(ev, r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rewardResponse{HabitID: habit.ID, Date: ev.TodayString(), Reward: photo, Revealed: revealed})
}

func (s *Server) revealReward(w http.ResponseWriter, r *http.Request) {
	ev := s.mgr.Evaluator()
	s.writes.Lock()
	photo, err := s.mgr.Reveal(ev, r.PathValue("id"))
	s.writes.Unlock()
	if err != nil {
		writeErr(w, err)
		return
	}
	habit, err := s.mgr.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rewardResponse{HabitID: habit.ID, Date: ev.TodayString(), Reward: photo, Revealed: true})
}

func (s *Server) weeklyReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.mgr.WeeklyReport(s.mgr.Evaluator())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getSort(w http.ResponseWriter, r *http.Request) {
	st := s.mgr.SortPreference()
	writeJSON(w, http.StatusOK, sortResponse{Strategy: st, Label: st.Label()})
}

func (s *Server) putSort(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Strategy string `json:"strategy"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, err)
		return
	}
	st, err := sorting.Parse(body.Strategy)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writes.Lock()
	s.mgr.SetSortPreference(st)
	s.writes.Unlock()
	writeJSON(w, http.StatusOK, sortResponse{Strategy: st, Label: st.Label()})
}

func parseDay(ev *tracker.Evaluator, s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	day, err := utils.ParseDateInLocation(s, ev.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", errBadRequest, s)
	}
	return day, nil
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func queryBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", errBadRequest, s)
	}
	return b, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
