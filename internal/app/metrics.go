package app

import "github.com/prometheus/client_golang/prometheus"

var (
	workoutsLoggedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "app",
		Name:      "workouts_logged_total",
		Help:      "Workouts accepted from the entry form, labeled by type.",
	}, []string{"type"})
	submissionsRejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "app",
		Name:      "submissions_rejected_total",
		Help:      "Form submissions that did not produce a workout, labeled by reason.",
	}, []string{"reason"})
	selectionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "app",
		Name:      "selections_total",
		Help:      "List selections, labeled by whether the workout was found.",
	}, []string{"result"})
	geolocationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "app",
		Name:      "geolocation_results_total",
		Help:      "Geolocation outcomes reported to the controller.",
	}, []string{"result"})
	resetsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "app",
		Name:      "resets_total",
		Help:      "Completed application resets.",
	})
)

func init() {
	prometheus.MustRegister(
		workoutsLoggedCounter,
		submissionsRejectedCounter,
		selectionsCounter,
		geolocationCounter,
		resetsCounter,
	)
}
