package model

type DashboardStats struct {
	TotalGoals          int `json:"total_goals"`
	ActiveGoals         int `json:"active_goals"`
	CompletedGoals      int `json:"completed_goals"`
	TotalHabits         int `json:"total_habits"`
	ActiveHabits        int `json:"active_habits"`
	BestStreak          int `json:"best_streak"`
	CurrentStreak       int `json:"current_streak"`
	TodayCompleted      int `json:"today_completed"`
	TodayTotal          int `json:"today_total"`
	WeeklyProgress      int `json:"weekly_progress"`
	AverageGoalProgress int `json:"average_goal_progress"`
}

type DailyCompletion struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type HabitStreak struct {
	HabitID string `json:"habit_id"`
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	Color   string `json:"color"`
	Current int    `json:"current"`
	Best    int    `json:"best"`
}

type ProgressReport struct {
	WeeklyRate  int               `json:"weekly_rate"`
	MonthlyRate int               `json:"monthly_rate"`
	LastWeek    []DailyCompletion `json:"last_week"`
	Streaks     []HabitStreak     `json:"streaks"`
}

// Export is a full snapshot of one user's data.
type Export struct {
	ExportedAt string          `json:"exported_at"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Goals      []*Goal         `json:"goals"`
	Progress   []*GoalProgress `json:"progress"`
	Habits     []*Habit        `json:"habits"`
	HabitLogs  []*HabitLog     `json:"habit_logs"`
}
