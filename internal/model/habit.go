package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	FrequencyCustom = "custom"
)

const (
	DefaultHabitIcon  = "✓"
	DefaultHabitColor = "#8B5CF6"
)

// Weekdays is a set of ISO weekdays (1 = Monday .. 7 = Sunday), stored as a JSON array.
type Weekdays []int

func AllWeekdays() Weekdays {
	return Weekdays{1, 2, 3, 4, 5, 6, 7}
}

func (w Weekdays) Value() (driver.Value, error) {
	if w == nil {
		w = Weekdays{}
	}
	b, err := json.Marshal([]int(w))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (w *Weekdays) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*w = Weekdays{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Weekdays", src)
	}
	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		return fmt.Errorf("failed to decode target days: %w", err)
	}
	*w = days
	return nil
}

type Habit struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Title         string    `db:"title" json:"title"`
	Description   *string   `db:"description" json:"description"`
	Icon          string    `db:"icon" json:"icon"`
	Color         string    `db:"color" json:"color"`
	Frequency     string    `db:"frequency" json:"frequency"`
	TargetDays    Weekdays  `db:"target_days" json:"target_days"`
	ReminderTime  *string   `db:"reminder_time" json:"reminder_time"`
	StreakCurrent int       `db:"streak_current" json:"streak_current"`
	StreakBest    int       `db:"streak_best" json:"streak_best"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// HabitLog marks a habit as done on one calendar day. At most one per habit and day.
type HabitLog struct {
	ID          string    `db:"id" json:"id"`
	HabitID     string    `db:"habit_id" json:"habit_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	CompletedAt string    `db:"completed_at" json:"completed_at"`
	Notes       *string   `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ToggleResult struct {
	Completed bool   `json:"completed"`
	Habit     *Habit `json:"habit"`
}
