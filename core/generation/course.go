package generation

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/llm"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
)

// Lesson outcome statuses.
const (
	LessonSuccess = "success"
	LessonSkipped = "skipped"
	LessonError   = "error"

	reasonNoMaterials = "No materials"
)

type (
	LessonOutcome struct {
		LessonID    string `json:"lesson_id"`
		LessonTitle string `json:"lesson_title"`
		Status      string `json:"status"`
		Reason      string `json:"reason,omitempty"`
		Error       string `json:"error,omitempty"`
		// QuizError is set when the content was saved but the quiz could not be generated or saved.
		QuizError string `json:"quiz_error,omitempty"`
	}

	CourseReport struct {
		CourseID string          `json:"course_id"`
		Results  []LessonOutcome `json:"results"`
	}

	CourseGenerator struct {
		courses   CourseStore
		quizzes   QuizStore
		providers ProviderStore
		factory   ClientFactory
		gen       *Generator
		logger    core.Logger
	}
)

func NewCourseGenerator(
	courses CourseStore,
	quizzes QuizStore,
	providers ProviderStore,
	factory ClientFactory,
	gen *Generator,
	logger core.Logger,
) *CourseGenerator {
	return &CourseGenerator{
		courses:   courses,
		quizzes:   quizzes,
		providers: providers,
		factory:   factory,
		gen:       gen,
		logger:    logger,
	}
}

// Generate writes the content and quiz of every lesson of the course that has materials.
// Lessons are processed one at a time; a failed lesson does not stop the others. Re-running overwrites.
// The course is `generating` while this runs and back to `draft` afterwards.
// A course left `generating` by an interrupted run can be generated again.
// requester, when not nil, must own the course (or be an admin).
func (cg *CourseGenerator) Generate(ctx context.Context, courseID string, requester *user.User) (rep CourseReport, err error) {
	c, err := cg.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return CourseReport{}, err
	}
	if requester != nil && !requester.IsAdmin() && c.TeacherID != requester.ID {
		return CourseReport{}, course.ErrNotFound
	}
	client, err := cg.courseClient(ctx, c)
	if err != nil {
		return CourseReport{}, err
	}

	if err = cg.courses.UpdateCourseStatus(ctx, c.ID, course.StatusGenerating); err != nil {
		return CourseReport{}, errors.Wrap(err, "marking course generating")
	}
	defer func() {
		// the request may be gone by now; the course must not stay `generating`
		rerr := cg.courses.UpdateCourseStatus(context.WithoutCancel(ctx), c.ID, course.StatusDraft)
		if rerr == nil {
			return
		}
		cg.logger.Error("generation.CourseGenerator: reverting course status", rerr, map[string]interface{}{"course_id": c.ID})
		if err == nil {
			err = errors.Wrap(rerr, "reverting course status")
		}
	}()

	lessons := append([]course.Lesson(nil), c.Lessons...)
	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].OrderIndex < lessons[j].OrderIndex })

	rep = CourseReport{CourseID: c.ID, Results: make([]LessonOutcome, 0, len(lessons))}
	for _, l := range lessons {
		out, lerr := cg.generateLesson(ctx, client, l)
		if lerr != nil {
			return CourseReport{}, lerr
		}
		cg.gen.metrics.ObserveLesson(out.Status)
		rep.Results = append(rep.Results, out)
	}
	return rep, nil
}

func (cg *CourseGenerator) courseClient(ctx context.Context, c course.Course) (llm.Client, error) {
	if c.ProviderID == "" {
		return nil, core.NewFieldValidationError("provider_id", "course has no AI provider")
	}
	p, err := cg.providers.GetProviderByID(ctx, c.ProviderID)
	if err != nil {
		if errors.Cause(err) == provider.ErrNotFound {
			return nil, core.NewFieldValidationError("provider_id", "course AI provider not found")
		}
		return nil, errors.Wrap(err, "getting provider")
	}
	if !p.IsActive {
		return nil, core.NewFieldValidationError("provider_id", "course AI provider is not active")
	}
	client, err := cg.factory.NewClient(ctx, provider.Adapt(p))
	if err != nil {
		return nil, core.NewFieldValidationError("provider_id", err.Error())
	}
	return client, nil
}

// generateLesson returns an error only when persisting the lesson content fails.
func (cg *CourseGenerator) generateLesson(ctx context.Context, client llm.Client, l course.Lesson) (LessonOutcome, error) {
	out := LessonOutcome{LessonID: l.ID, LessonTitle: l.Title}
	if len(l.Materials) == 0 {
		out.Status, out.Reason = LessonSkipped, reasonNoMaterials
		return out, nil
	}

	content := cg.gen.LessonContent(ctx, client, LessonInput{
		Title:         l.Title,
		Material:      MaterialText(l.Materials),
		DurationHours: l.DurationHours,
	})
	text, ok := content.Get()
	if !ok {
		out.Status, out.Error = LessonError, FailureReason(content)
		return out, nil
	}
	if err := cg.courses.UpdateLessonContent(ctx, l.ID, text, course.LessonReady); err != nil {
		return LessonOutcome{}, errors.Wrapf(err, "saving content of lesson %s", l.ID)
	}

	questions := cg.gen.Quiz(ctx, client, l.Title, text)
	if qs, ok := questions.Get(); ok {
		if _, err := cg.quizzes.UpsertQuiz(ctx, quiz.NewLessonQuiz(l, qs)); err != nil {
			cg.logger.Error("generation.CourseGenerator: saving quiz", err, map[string]interface{}{"lesson_id": l.ID})
			out.QuizError = err.Error()
		}
	} else {
		out.QuizError = FailureReason(questions)
	}

	out.Status = LessonSuccess
	return out, nil
}

// MaterialText concatenates the text of the materials; files without extracted text are named instead.
func MaterialText(materials []course.Material) string {
	parts := make([]string, 0, len(materials))
	for _, m := range materials {
		parts = append(parts, m.Text())
	}
	return strings.Join(parts, "\n\n")
}
