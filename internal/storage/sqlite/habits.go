package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/models"
)

const habitColumns = `id, name, description, color, icon, frequency, time_of_day, start_date,
	streak, active, reward_enabled, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, timeOfDay, createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Color, &h.Icon, &frequency, &timeOfDay,
		&h.StartDate, &h.Streak, &h.Active, &h.RewardEnabled, &createdAt, &updatedAt, &deletedAt); err != nil {
		return models.Habit{}, err
	}

	h.TimeOfDay = constants.TimeOfDay(timeOfDay)
	if err := json.Unmarshal([]byte(frequency), &h.Frequency); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse frequency for habit %s: %w", h.ID, err)
	}

	var err error
	if h.CreatedAt, err = time.Parse(constants.TimestampFormat, createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	if h.UpdatedAt, err = time.Parse(constants.TimestampFormat, updatedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
	}
	if deletedAt.Valid {
		t, err := time.Parse(constants.TimestampFormat, deletedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse deleted_at for habit %s: %w", h.ID, err)
		}
		h.DeletedAt = &t
	}
	h.CompletedDates = []string{}
	return h, nil
}

func habitArgs(h models.Habit) ([]any, error) {
	frequency := h.Frequency
	if frequency == nil {
		frequency = []string{}
	}
	freqJSON, err := json.Marshal(frequency)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frequency: %w", err)
	}
	timeOfDay := h.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = constants.TimeOfDayAnytime
	}
	var deletedAt sql.NullString
	if h.DeletedAt != nil {
		deletedAt = sql.NullString{String: h.DeletedAt.UTC().Format(constants.TimestampFormat), Valid: true}
	}
	return []any{
		h.ID, h.Name, h.Description, h.Color, h.Icon, string(freqJSON), string(timeOfDay), h.StartDate,
		h.Streak, h.Active, h.RewardEnabled,
		h.CreatedAt.UTC().Format(constants.TimestampFormat),
		h.UpdatedAt.UTC().Format(constants.TimestampFormat),
		deletedAt,
	}, nil
}

// AddHabit inserts a habit together with any completions it already carries.
func (s *Store) AddHabit(habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	for _, ts := range habit.CompletedDates {
		if _, err := tx.Exec("INSERT INTO habit_completions (habit_id, completed_at) VALUES (?, ?)", habit.ID, ts); err != nil {
			return fmt.Errorf("failed to insert completion: %w", err)
		}
	}
	return tx.Commit()
}

// GetHabit returns a live habit with its completions.
func (s *Store) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		return models.Habit{}, notFound(err, "habit "+id)
	}
	if h.CompletedDates, err = s.GetCompletions(id); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+`
		FROM habits WHERE name = ? COLLATE NOCASE AND deleted_at IS NULL ORDER BY created_at LIMIT 1`, name))
	if err != nil {
		return models.Habit{}, notFound(err, "habit "+name)
	}
	if h.CompletedDates, err = s.GetCompletions(h.ID); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// GetAllHabits returns habits ordered by creation time.
func (s *Store) GetAllHabits(includeInactive, includeDeleted bool) ([]models.Habit, error) {
	exists, err := s.tableExists("habits")
	if err != nil || !exists {
		return []models.Habit{}, nil
	}

	var where []string
	if !includeDeleted {
		where = append(where, "deleted_at IS NULL")
	}
	if !includeInactive {
		where = append(where, "active = 1")
	}
	query := "SELECT " + habitColumns + " FROM habits"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	index := make(map[string]int)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return habits, nil
	}

	crows, err := s.db.Query("SELECT habit_id, completed_at FROM habit_completions ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var habitID, ts string
		if err := crows.Scan(&habitID, &ts); err != nil {
			return nil, err
		}
		if i, ok := index[habitID]; ok {
			habits[i].CompletedDates = append(habits[i].CompletedDates, ts)
		}
	}
	return habits, crows.Err()
}

// UpdateHabit writes the habit row. Completions are managed separately.
func (s *Store) UpdateHabit(habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE habits SET name = ?, description = ?, color = ?, icon = ?, frequency = ?,
			time_of_day = ?, start_date = ?, streak = ?, active = ?, reward_enabled = ?,
			updated_at = ?, deleted_at = ?
		WHERE id = ?`,
		args[1], args[2], args[3], args[4], args[5], args[6], args[7], args[8], args[9], args[10],
		args[12], args[13], habit.ID)
	if err != nil {
		return err
	}
	return expectRow(res, "habit "+habit.ID)
}

func (s *Store) DeleteHabit(id string) error {
	now := time.Now().UTC().Format(constants.TimestampFormat)
	res, err := s.db.Exec(`UPDATE habits SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return err
	}
	return expectRow(res, "habit "+id)
}

func (s *Store) RestoreHabit(id string) error {
	now := time.Now().UTC().Format(constants.TimestampFormat)
	res, err := s.db.Exec(`UPDATE habits SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`, now, id)
	if err != nil {
		return err
	}
	return expectRow(res, "deleted habit "+id)
}

// GetCompletions returns a habit's completion timestamps in insertion order.
func (s *Store) GetCompletions(habitID string) ([]string, error) {
	rows, err := s.db.Query("SELECT completed_at FROM habit_completions WHERE habit_id = ? ORDER BY id", habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var ts string
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *Store) AddCompletion(habitID, completedAt string) error {
	_, err := s.db.Exec("INSERT INTO habit_completions (habit_id, completed_at) VALUES (?, ?)", habitID, completedAt)
	if err != nil {
		return fmt.Errorf("failed to add completion: %w", err)
	}
	return nil
}

// RemoveCompletions deletes the given timestamps from a habit's ledger.
func (s *Store) RemoveCompletions(habitID string, completedAt []string) error {
	if len(completedAt) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ts := range completedAt {
		if _, err := tx.Exec("DELETE FROM habit_completions WHERE habit_id = ? AND completed_at = ?", habitID, ts); err != nil {
			return fmt.Errorf("failed to remove completion: %w", err)
		}
	}
	return tx.Commit()
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
