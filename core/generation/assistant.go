package generation

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/user"
)

// Assistant serves the on-demand calls: simplified lessons for students and provider checks for teachers.
type Assistant struct {
	courseSvc   *course.Service
	providerSvc *provider.Service
	factory     ClientFactory
	gen         *Generator
}

func NewAssistant(courseSvc *course.Service, providerSvc *provider.Service, factory ClientFactory, gen *Generator) *Assistant {
	return &Assistant{
		courseSvc:   courseSvc,
		providerSvc: providerSvc,
		factory:     factory,
		gen:         gen,
	}
}

// Simplify rewrites a lesson of a course the student is enrolled in, using the course provider.
func (a *Assistant) Simplify(ctx context.Context, lessonID string, student user.User) (string, error) {
	l, c, err := a.courseSvc.GetStudentLesson(ctx, lessonID, student.ID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(l.Content) == "" {
		return "", core.NewFieldValidationError("lesson_id", "lesson content is not ready yet")
	}
	if c.ProviderID == "" {
		return "", core.NewFieldValidationError("provider_id", "course has no AI provider")
	}
	p, err := a.providerSvc.GetByID(ctx, c.ProviderID)
	if err != nil {
		if errors.Cause(err) == provider.ErrNotFound {
			return "", core.NewFieldValidationError("provider_id", "course AI provider not found")
		}
		return "", errors.Wrap(err, "getting provider")
	}
	if !p.IsActive {
		return "", core.NewFieldValidationError("provider_id", "course AI provider is not active")
	}
	client, err := a.factory.NewClient(ctx, provider.Adapt(p))
	if err != nil {
		return "", core.NewFieldValidationError("provider_id", err.Error())
	}

	out := a.gen.Simplify(ctx, client, l.Content)
	text, ok := out.Get()
	if !ok {
		return "", &GenerationError{Reason: FailureReason(out)}
	}
	return text, nil
}

// TestProvider sends a short prompt through a saved provider (tr.ProviderID) or an unsaved configuration.
// Any failure is reported as a validation error on "provider".
func (a *Assistant) TestProvider(ctx context.Context, teacherID string, tr provider.TestRequest) (string, error) {
	p := provider.FromTest(teacherID, tr)
	if tr.ProviderID != "" {
		var err error
		if p, err = a.providerSvc.GetOwned(ctx, tr.ProviderID, teacherID); err != nil {
			return "", err
		}
	}

	client, err := a.factory.NewClient(ctx, provider.Adapt(p))
	if err != nil {
		return "", core.NewFieldValidationError("provider", err.Error())
	}
	out := a.gen.Ping(ctx, client)
	text, ok := out.Get()
	if !ok {
		return "", core.NewFieldValidationError("provider", FailureReason(out))
	}
	return text, nil
}
