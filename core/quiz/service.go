package quiz

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("quiz not found")
	ErrResultNotFound = errors.New("quiz result not found")
)

type (
	Repository interface {
		// UpsertQuiz saves the quiz of q.LessonID, replacing any existing one; a lesson has at most one quiz.
		UpsertQuiz(ctx context.Context, q Quiz) (Quiz, error)
		GetQuizByID(ctx context.Context, id string) (Quiz, error)
		GetQuizByLessonID(ctx context.Context, lessonID string) (Quiz, error)

		CreateResult(ctx context.Context, r Result) (Result, error)
		GetResultByID(ctx context.Context, id string) (Result, error)
		SetResultFeedback(ctx context.Context, id, feedback string) error
		// CountCompletedLessons counts the distinct lessons of the course the student has a result for.
		CountCompletedLessons(ctx context.Context, studentID, courseID string) (int, error)
	}

	Service struct {
		repo      Repository
		courseSvc *course.Service
		usrSvc    *user.Service
		notifySvc *notify.Service
		// language of the templated feedback
		language string
	}
)

func NewService(repo Repository, courseSvc *course.Service, usrSvc *user.Service, notifySvc *notify.Service, language string) *Service {
	return &Service{
		repo:      repo,
		courseSvc: courseSvc,
		usrSvc:    usrSvc,
		notifySvc: notifySvc,
		language:  language,
	}
}

func (s Submission) Validate(validate *validator.Validate) error {
	return validate.Struct(s)
}

func (svc *Service) GetByLesson(ctx context.Context, lessonID string) (Quiz, error) {
	return svc.repo.GetQuizByLessonID(ctx, lessonID)
}

// Submit scores the student's answers and records the attempt.
// Weak topics yield a recommendation for the student and a notification for the teacher.
func (svc *Service) Submit(ctx context.Context, student user.User, quizID string, sub Submission) (SubmitResponse, error) {
	q, err := svc.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return SubmitResponse{}, err
	}
	l, c, err := svc.courseSvc.GetStudentLesson(ctx, q.LessonID, student.ID)
	if err != nil {
		if err == course.ErrLessonNotFound {
			return SubmitResponse{}, ErrNotFound
		}
		return SubmitResponse{}, errors.Wrap(err, "getting lesson")
	}
	if len(sub.Answers) != len(q.Questions) {
		return SubmitResponse{}, core.NewFieldValidationError("answers", "one answer per question is required")
	}

	score, weakTopics := Score(q.Questions, sub.Answers)
	res, err := svc.repo.CreateResult(ctx, Result{
		QuizID:      q.ID,
		StudentID:   student.ID,
		Answers:     sub.Answers,
		Score:       score,
		MaxScore:    len(q.Questions),
		WeakTopics:  weakTopics,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		return SubmitResponse{}, errors.Wrap(err, "creating quiz result")
	}

	if len(weakTopics) > 0 {
		if _, err = svc.notifySvc.RecommendWeakTopics(ctx, student.ID, l.ID, weakTopics); err != nil {
			return SubmitResponse{}, errors.Wrap(err, "creating recommendation")
		}
		if err = svc.notifyTeacher(ctx, student, c, l, res); err != nil {
			return SubmitResponse{}, errors.Wrap(err, "notifying teacher")
		}
	}

	completed, err := svc.repo.CountCompletedLessons(ctx, student.ID, c.ID)
	if err != nil {
		return SubmitResponse{}, errors.Wrap(err, "counting completed lessons")
	}
	if err = svc.courseSvc.UpdateProgress(ctx, student.ID, c, completed); err != nil {
		return SubmitResponse{}, errors.Wrap(err, "updating progress")
	}

	return SubmitResponse{Result: res, Feedback: TemplateFeedback(svc.language, weakTopics)}, nil
}

func (svc *Service) notifyTeacher(ctx context.Context, student user.User, c course.Course, l course.Lesson, res Result) error {
	teacher, err := svc.usrSvc.GetByID(ctx, c.TeacherID)
	if err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	_, err = svc.notifySvc.NotifyTeacher(ctx, teacher.ID, notify.QuizOutcome{
		TeacherName:  teacher.DisplayName(),
		TeacherEmail: teacher.Email,
		StudentName:  student.DisplayName(),
		CourseID:     c.ID,
		LessonTitle:  l.Title,
		Score:        res.Score,
		MaxScore:     res.MaxScore,
		WeakTopics:   res.WeakTopics,
	})
	return err
}

// NewLessonQuiz builds the quiz of a lesson; blank question ids are filled in.
func NewLessonQuiz(l course.Lesson, questions []Question) Quiz {
	now := time.Now().UTC()
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.New().String()
		}
	}
	return Quiz{
		LessonID:  l.ID,
		Title:     l.Title + " - Test",
		Questions: questions,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
