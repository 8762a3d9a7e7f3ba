package validation

import (
	"math"
	"regexp"
	"slices"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/model"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var (
	goalStatuses = []string{model.GoalStatusActive, model.GoalStatusCompleted, model.GoalStatusPaused, model.GoalStatusCancelled}
	priorities   = []string{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}
	frequencies  = []string{model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyCustom}
)

func GoalStatus(status string) error {
	if !slices.Contains(goalStatuses, status) {
		return Field("status", "must be one of active, completed, paused, cancelled")
	}
	return nil
}

func Priority(priority string) error {
	if !slices.Contains(priorities, priority) {
		return Field("priority", "must be one of low, medium, high")
	}
	return nil
}

func Frequency(frequency string) error {
	if !slices.Contains(frequencies, frequency) {
		return Field("frequency", "must be one of daily, weekly, custom")
	}
	return nil
}

func Finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Field(field, "must be a finite number")
	}
	return nil
}

// TargetValue must be finite and strictly positive.
func TargetValue(v float64) error {
	if err := Finite("target_value", v); err != nil {
		return err
	}
	if v <= 0 {
		return Field("target_value", "must be greater than 0")
	}
	return nil
}

func Color(color string) error {
	if !colorPattern.MatchString(color) {
		return Field("color", "must be a hex color like #3B82F6")
	}
	return nil
}

func Day(field, day string) error {
	if !calendar.Valid(day) {
		return Field(field, "must be a date in YYYY-MM-DD format")
	}
	return nil
}

func TargetDays(days []int) error {
	if len(days) == 0 {
		return Field("target_days", "at least one weekday is required")
	}
	for _, d := range days {
		if d < 1 || d > 7 {
			return Field("target_days", "weekdays must be between 1 (Monday) and 7 (Sunday)")
		}
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
