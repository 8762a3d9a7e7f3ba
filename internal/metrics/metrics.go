// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	GoalProgressLogged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "goaltrack_goal_progress_logged_total",
		Help: "Progress entries added to goals",
	})

	GoalsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "goaltrack_goals_completed_total",
		Help: "Goals that crossed their target",
	})

	HabitToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_habit_toggles_total",
			Help: "Habit day toggles by resulting state",
		},
		[]string{"state"},
	)

	BlogFetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_blog_fetch_errors_total",
			Help: "Failed blog loads by source",
		},
		[]string{"source"},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			GoalProgressLogged,
			GoalsCompleted,
			HabitToggles,
			BlogFetchErrors,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
