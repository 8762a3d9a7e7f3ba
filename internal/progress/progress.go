// Package progress derives goal totals, goal status and habit streaks from their child rows.
//
// Nothing in here touches storage. Callers load the child rows, call these functions and write the result back
// inside the same transaction that mutated the children.
package progress

import (
	"math"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/model"
)

type Goal struct {
	CurrentValue float64
	Status       string
}

// GoalState sums progress values and decides whether the goal is completed.
// Paused and cancelled are user decisions and pass through untouched.
func GoalState(target float64, status string, values []float64) Goal {
	var sum float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
	}
	current := math.Max(0, sum)

	switch status {
	case model.GoalStatusPaused, model.GoalStatusCancelled:
		return Goal{CurrentValue: current, Status: status}
	}

	if current >= target {
		return Goal{CurrentValue: current, Status: model.GoalStatusCompleted}
	}
	return Goal{CurrentValue: current, Status: model.GoalStatusActive}
}

// CurrentStreak counts consecutive logged days walking back from today.
// Days after today are ignored and duplicates count once.
func CurrentStreak(today string, days []string) int {
	logged := make(map[string]struct{}, len(days))
	for _, d := range days {
		if d <= today {
			logged[d] = struct{}{}
		}
	}

	streak := 0
	cursor := today
	// A chain can never be longer than the number of distinct days on record.
	for range len(logged) {
		if _, ok := logged[cursor]; !ok {
			break
		}
		streak++
		prev, err := calendar.AddDays(cursor, -1)
		if err != nil {
			break
		}
		cursor = prev
	}
	return streak
}

func BestStreak(previousBest, current int) int {
	return max(previousBest, current)
}

// CompletionRate is the rounded share of habit-days completed, as a percentage.
func CompletionRate(logCount, habitCount, days int) int {
	denom := habitCount * days
	if denom <= 0 {
		return 0
	}
	return int(math.Round(float64(logCount) / float64(denom) * 100))
}

// GoalPercent is how far current is towards target, capped at 100.
func GoalPercent(current, target float64) float64 {
	if target <= 0 || math.IsNaN(current) || math.IsInf(current, 0) {
		return 0
	}
	return math.Min(100, math.Max(0, current/target*100))
}
