package inmem

import (
	"context"
	"time"

	"github.com/trezcool/darslik/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db}
}

func copyQuiz(q quiz.Quiz) *quiz.Quiz {
	questions := make([]quiz.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = copyStrings(question.Options)
		questions[i] = question
	}
	q.Questions = questions
	return &q
}

func (repo *quizRepository) UpsertQuiz(_ context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.quizzes {
		if existing.LessonID == q.LessonID {
			q.ID = existing.ID
			q.CreatedAt = existing.CreatedAt
			break
		}
	}
	q.ID = newID(q.ID)
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now().UTC()
	}
	repo.db.quizzes[q.ID] = copyQuiz(q)
	return *copyQuiz(q), nil
}

func (repo *quizRepository) GetQuizByID(_ context.Context, id string) (quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if q, ok := repo.db.quizzes[id]; ok {
		return *copyQuiz(*q), nil
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}

func (repo *quizRepository) GetQuizByLessonID(_ context.Context, lessonID string) (quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, q := range repo.db.quizzes {
		if q.LessonID == lessonID {
			return *copyQuiz(*q), nil
		}
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}

func (repo *quizRepository) CreateResult(_ context.Context, r quiz.Result) (quiz.Result, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.quizzes[r.QuizID]; !ok {
		return quiz.Result{}, quiz.ErrNotFound
	}
	r.ID = newID(r.ID)
	cr := r
	cr.Answers = append([]int(nil), r.Answers...)
	cr.WeakTopics = copyStrings(r.WeakTopics)
	repo.db.results[r.ID] = &cr
	return r, nil
}

func (repo *quizRepository) GetResultByID(_ context.Context, id string) (quiz.Result, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r, ok := repo.db.results[id]; ok {
		res := *r
		res.Answers = append([]int(nil), r.Answers...)
		res.WeakTopics = copyStrings(r.WeakTopics)
		return res, nil
	}
	return quiz.Result{}, quiz.ErrResultNotFound
}

func (repo *quizRepository) SetResultFeedback(_ context.Context, id, feedback string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	r, ok := repo.db.results[id]
	if !ok {
		return quiz.ErrResultNotFound
	}
	r.AIFeedback = feedback
	return nil
}

func (repo *quizRepository) CountCompletedLessons(_ context.Context, studentID, courseID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	lessons := make(map[string]bool)
	for _, r := range repo.db.results {
		if r.StudentID != studentID {
			continue
		}
		q, ok := repo.db.quizzes[r.QuizID]
		if !ok {
			continue
		}
		if l, ok := repo.db.lessons[q.LessonID]; ok && l.CourseID == courseID {
			lessons[l.ID] = true
		}
	}
	return len(lessons), nil
}
