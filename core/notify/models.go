package notify

import "time"

// Notification types
const (
	TypeQuizCompleted     = "quiz_completed"
	TypeStudentStruggling = "student_struggling"
	TypeCourseEnrolled    = "course_enrolled"
)

// Recommendation types
const (
	RecommendWeakTopic     = "weak_topic"
	RecommendExtraPractice = "extra_practice"
	RecommendReview        = "review"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Recommendation struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	LessonID  string    `json:"lesson_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// QuizOutcome is what a teacher is told about a student's quiz attempt.
type QuizOutcome struct {
	TeacherName  string
	TeacherEmail string
	StudentName  string
	CourseID     string
	LessonTitle  string
	Score        int
	MaxScore     int
	WeakTopics   []string
}

// Struggling reports whether the student scored below half.
func (o QuizOutcome) Struggling() bool {
	return o.Score*2 < o.MaxScore
}

// MarkRead lists the items to mark read; empty means all of them.
type MarkRead struct {
	IDs []string `json:"ids" validate:"omitempty,dive,uuid"`
}
