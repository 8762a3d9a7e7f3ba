package model

import (
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusPaused    = "paused"
	GoalStatusCancelled = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	DefaultGoalCategory = "osobno"
	DefaultGoalTarget   = 100
	DefaultGoalUnit     = "%"
	DefaultGoalColor    = "#3B82F6"
)

type Goal struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description"`
	Category     string    `db:"category" json:"category"`
	TargetValue  float64   `db:"target_value" json:"target_value"`
	CurrentValue float64   `db:"current_value" json:"current_value"`
	Unit         string    `db:"unit" json:"unit"`
	StartDate    *string   `db:"start_date" json:"start_date"`
	EndDate      *string   `db:"end_date" json:"end_date"`
	Status       string    `db:"status" json:"status"`
	Priority     string    `db:"priority" json:"priority"`
	Color        string    `db:"color" json:"color"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GoalProgress is one increment towards a goal. Value may be negative for corrections.
type GoalProgress struct {
	ID        string    `db:"id" json:"id"`
	GoalID    string    `db:"goal_id" json:"goal_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Value     float64   `db:"value" json:"value"`
	Notes     *string   `db:"notes" json:"notes"`
	LoggedAt  string    `db:"logged_at" json:"logged_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GoalDetail is a goal together with its progress history, newest first.
type GoalDetail struct {
	*Goal
	Progress []*GoalProgress `json:"progress"`
}
