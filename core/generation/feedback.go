package generation

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/llm"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
)

type (
	FeedbackResult struct {
		ResultID string `json:"quiz_result_id"`
		Feedback string `json:"feedback"`
		// Fallback is true when no provider was available and the templated message was returned.
		Fallback bool `json:"fallback"`
	}

	FeedbackGenerator struct {
		courses   CourseStore
		quizzes   QuizStore
		providers ProviderStore
		factory   ClientFactory
		gen       *Generator
	}
)

func NewFeedbackGenerator(courses CourseStore, quizzes QuizStore, providers ProviderStore, factory ClientFactory, gen *Generator) *FeedbackGenerator {
	return &FeedbackGenerator{
		courses:   courses,
		quizzes:   quizzes,
		providers: providers,
		factory:   factory,
		gen:       gen,
	}
}

// Generate writes the AI feedback of a quiz attempt and saves it on the attempt, overwriting any previous one.
// Without an active course provider the templated feedback is returned and nothing is saved.
// A generation failure is returned as *GenerationError.
// requester, when not nil, must be the student, the course teacher or an admin.
func (fg *FeedbackGenerator) Generate(ctx context.Context, resultID string, requester *user.User) (FeedbackResult, error) {
	res, err := fg.quizzes.GetResultByID(ctx, resultID)
	if err != nil {
		return FeedbackResult{}, err
	}
	q, err := fg.quizzes.GetQuizByID(ctx, res.QuizID)
	if err != nil {
		return FeedbackResult{}, errors.Wrap(err, "getting quiz")
	}
	l, err := fg.courses.GetLessonByID(ctx, q.LessonID)
	if err != nil {
		return FeedbackResult{}, errors.Wrap(err, "getting lesson")
	}
	c, err := fg.courses.GetCourseByID(ctx, l.CourseID)
	if err != nil {
		return FeedbackResult{}, errors.Wrap(err, "getting course")
	}
	if requester != nil && !requester.IsAdmin() && requester.ID != res.StudentID && requester.ID != c.TeacherID {
		return FeedbackResult{}, quiz.ErrResultNotFound
	}

	client, err := fg.client(ctx, c)
	if err != nil {
		return FeedbackResult{}, err
	}
	if client == nil {
		return FeedbackResult{ResultID: res.ID, Feedback: quiz.TemplateFeedback(fg.gen.conf.Language, res.WeakTopics), Fallback: true}, nil
	}

	out := fg.gen.Feedback(ctx, client, FeedbackInput{
		LessonTitle: l.Title,
		Score:       res.Score,
		MaxScore:    res.MaxScore,
		Percentage:  res.Percentage(),
		WeakTopics:  res.WeakTopics,
	})
	text, ok := out.Get()
	if !ok {
		return FeedbackResult{}, &GenerationError{Reason: FailureReason(out)}
	}
	if err = fg.quizzes.SetResultFeedback(ctx, res.ID, text); err != nil {
		return FeedbackResult{}, errors.Wrap(err, "saving feedback")
	}
	return FeedbackResult{ResultID: res.ID, Feedback: text}, nil
}

// client returns nil, nil when the course has no usable provider.
func (fg *FeedbackGenerator) client(ctx context.Context, c course.Course) (llm.Client, error) {
	if c.ProviderID == "" {
		return nil, nil
	}
	p, err := fg.providers.GetProviderByID(ctx, c.ProviderID)
	if err != nil {
		if errors.Cause(err) == provider.ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting provider")
	}
	if !p.IsActive {
		return nil, nil
	}
	client, err := fg.factory.NewClient(ctx, provider.Adapt(p))
	if err != nil {
		return nil, core.NewFieldValidationError("provider_id", err.Error())
	}
	return client, nil
}
