package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/trezcool/darslik/core/quiz"
)

type (
	quizRow struct {
		ID        string         `db:"id"`
		LessonID  string         `db:"lesson_id"`
		Title     string         `db:"title"`
		Questions types.JSONText `db:"questions"`
		CreatedAt time.Time      `db:"created_at"`
		UpdatedAt time.Time      `db:"updated_at"`
	}

	resultRow struct {
		ID          string         `db:"id"`
		QuizID      string         `db:"quiz_id"`
		StudentID   string         `db:"student_id"`
		Answers     pq.Int64Array  `db:"answers"`
		Score       int            `db:"score"`
		MaxScore    int            `db:"max_score"`
		WeakTopics  pq.StringArray `db:"weak_topics"`
		AIFeedback  string         `db:"ai_feedback"`
		CompletedAt time.Time      `db:"completed_at"`
	}
)

const (
	quizColumns   = `id, lesson_id, title, questions, created_at, updated_at`
	resultColumns = `id, quiz_id, student_id, answers, score, max_score, weak_topics, ai_feedback, completed_at`
)

func (row quizRow) toQuiz() (quiz.Quiz, error) {
	q := quiz.Quiz{
		ID:        row.ID,
		LessonID:  row.LessonID,
		Title:     row.Title,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := row.Questions.Unmarshal(&q.Questions); err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

func newResultRow(r quiz.Result) resultRow {
	answers := make(pq.Int64Array, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = int64(a)
	}
	weak := r.WeakTopics
	if weak == nil {
		weak = []string{}
	}
	return resultRow{
		ID:          r.ID,
		QuizID:      r.QuizID,
		StudentID:   r.StudentID,
		Answers:     answers,
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		WeakTopics:  pq.StringArray(weak),
		AIFeedback:  r.AIFeedback,
		CompletedAt: r.CompletedAt,
	}
}

func (row resultRow) toResult() quiz.Result {
	answers := make([]int, len(row.Answers))
	for i, a := range row.Answers {
		answers[i] = int(a)
	}
	return quiz.Result{
		ID:          row.ID,
		QuizID:      row.QuizID,
		StudentID:   row.StudentID,
		Answers:     answers,
		Score:       row.Score,
		MaxScore:    row.MaxScore,
		WeakTopics:  []string(row.WeakTopics),
		AIFeedback:  row.AIFeedback,
		CompletedAt: row.CompletedAt.UTC(),
	}
}

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *sqlx.DB) quiz.Repository {
	return &quizRepository{db: db}
}

// UpsertQuiz keeps the ID and creation time of the lesson's existing quiz.
func (repo *quizRepository) UpsertQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return quiz.Quiz{}, err
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = now
	}

	var row quizRow
	err = repo.db.GetContext(ctx, &row, `
		INSERT INTO quizzes (`+quizColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lesson_id) DO UPDATE SET
			title = EXCLUDED.title,
			questions = EXCLUDED.questions,
			updated_at = EXCLUDED.updated_at
		RETURNING `+quizColumns,
		newID(q.ID), q.LessonID, q.Title, types.JSONText(questions), q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return quiz.Quiz{}, err
	}
	return row.toQuiz()
}

func (repo *quizRepository) GetQuizByID(ctx context.Context, id string) (quiz.Quiz, error) {
	var row quizRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id); err != nil {
		return quiz.Quiz{}, notFound(err, quiz.ErrNotFound)
	}
	return row.toQuiz()
}

func (repo *quizRepository) GetQuizByLessonID(ctx context.Context, lessonID string) (quiz.Quiz, error) {
	var row quizRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+quizColumns+` FROM quizzes WHERE lesson_id = $1`, lessonID); err != nil {
		return quiz.Quiz{}, notFound(err, quiz.ErrNotFound)
	}
	return row.toQuiz()
}

func (repo *quizRepository) CreateResult(ctx context.Context, r quiz.Result) (quiz.Result, error) {
	r.ID = newID(r.ID)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO quiz_results (`+resultColumns+`)
		VALUES (:id, :quiz_id, :student_id, :answers, :score, :max_score, :weak_topics, :ai_feedback, :completed_at)`,
		newResultRow(r),
	)
	if isForeignKeyViolation(err) {
		return quiz.Result{}, quiz.ErrNotFound
	}
	if err != nil {
		return quiz.Result{}, err
	}
	return r, nil
}

func (repo *quizRepository) GetResultByID(ctx context.Context, id string) (quiz.Result, error) {
	var row resultRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+resultColumns+` FROM quiz_results WHERE id = $1`, id); err != nil {
		return quiz.Result{}, notFound(err, quiz.ErrResultNotFound)
	}
	return row.toResult(), nil
}

func (repo *quizRepository) SetResultFeedback(ctx context.Context, id, feedback string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE quiz_results SET ai_feedback = $2 WHERE id = $1`, id, feedback)
	return checkAffected(res, err, quiz.ErrResultNotFound)
}

func (repo *quizRepository) CountCompletedLessons(ctx context.Context, studentID, courseID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT q.lesson_id)
		FROM quiz_results r
		JOIN quizzes q ON q.id = r.quiz_id
		JOIN lessons l ON l.id = q.lesson_id
		WHERE r.student_id = $1 AND l.course_id = $2`,
		studentID, courseID,
	)
	return count, err
}
