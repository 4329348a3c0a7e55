package generation

import "time"

// Kinds of generation calls.
const (
	KindLesson   = "lesson"
	KindQuiz     = "quiz"
	KindFeedback = "feedback"
	KindSimplify = "simplify"
	KindTest     = "test"
)

// Metrics records generation activity.
type Metrics interface {
	ObserveGeneration(kind, outcome string, elapsed time.Duration)
	ObserveLesson(status string)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveGeneration(string, string, time.Duration) {}
func (NoopMetrics) ObserveLesson(string)                          {}
