package generation

import (
	"context"

	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/llm"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
)

type (
	// ClientFactory builds a model client for a provider connection.
	ClientFactory interface {
		NewClient(ctx context.Context, conn provider.Connection) (llm.Client, error)
	}

	CourseStore interface {
		GetCourseByID(ctx context.Context, id string) (course.Course, error)
		GetLessonByID(ctx context.Context, id string) (course.Lesson, error)
		UpdateCourseStatus(ctx context.Context, id, status string) error
		UpdateLessonContent(ctx context.Context, id, content, status string) error
	}

	QuizStore interface {
		UpsertQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)
		GetQuizByID(ctx context.Context, id string) (quiz.Quiz, error)
		GetResultByID(ctx context.Context, id string) (quiz.Result, error)
		SetResultFeedback(ctx context.Context, id, feedback string) error
	}

	ProviderStore interface {
		GetProviderByID(ctx context.Context, id string) (provider.Provider, error)
	}

	// GenerationError carries the failure description of a generation the caller asked for explicitly.
	GenerationError struct {
		Reason string
	}
)

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Reason
}

var (
	_ CourseStore   = (course.Repository)(nil)
	_ QuizStore     = (quiz.Repository)(nil)
	_ ProviderStore = (provider.Repository)(nil)
)
