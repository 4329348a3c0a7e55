package quiz

import (
	"time"
)

const (
	MinQuestions = 5
	MaxQuestions = 10
	OptionsCount = 4
)

type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Topic         string   `json:"topic"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID        string     `json:"id"`
	LessonID  string     `json:"lesson_id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

// PublicQuestion is a Question as shown to students: no answer, no explanation.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Topic    string   `json:"topic"`
}

type PublicQuiz struct {
	ID        string           `json:"id"`
	LessonID  string           `json:"lesson_id"`
	Title     string           `json:"title"`
	Questions []PublicQuestion `json:"questions"`
}

func (q Quiz) Public() PublicQuiz {
	pq := PublicQuiz{
		ID:        q.ID,
		LessonID:  q.LessonID,
		Title:     q.Title,
		Questions: make([]PublicQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		pq.Questions = append(pq.Questions, PublicQuestion{
			ID:       question.ID,
			Question: question.Question,
			Options:  question.Options,
			Topic:    question.Topic,
		})
	}
	return pq
}

// Result is a completed quiz attempt.
type Result struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	StudentID   string    `json:"student_id"`
	Answers     []int     `json:"answers"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	WeakTopics  []string  `json:"weak_topics"`
	AIFeedback  string    `json:"ai_feedback,omitempty"`
	CompletedAt time.Time `json:"completed_at"` // UTC
}

// Percentage is the rounded score percentage.
func (r Result) Percentage() int {
	if r.MaxScore <= 0 {
		return 0
	}
	return (r.Score*200 + r.MaxScore) / (2 * r.MaxScore)
}

// Submission holds a student's answers, one option index per question; -1 for unanswered.
type Submission struct {
	Answers []int `json:"answers" validate:"required,dive,min=-1,max=3"`
}

// SubmitResponse is what a student gets back after submitting a quiz.
type SubmitResponse struct {
	Result   Result `json:"result"`
	Feedback string `json:"feedback"`
}
