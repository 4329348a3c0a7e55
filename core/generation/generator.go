package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/llm"
	"github.com/trezcool/darslik/core/quiz"
)

// Structured runs a schema constrained call and decodes the output into T.
// Every error ends up in the Failure reason; there is no retry.
func Structured[T any](ctx context.Context, client llm.Client, req llm.Request) Outcome[T] {
	if req.Schema == nil {
		return fail[T]("structured generation requires a schema")
	}
	resp, err := client.Generate(ctx, req)
	if err != nil {
		return fail[T](err.Error())
	}
	var v T
	if err := json.Unmarshal([]byte(resp.Content), &v); err != nil {
		return fail[T](fmt.Sprintf("decoding %s: %v", req.Schema.Name, err))
	}
	return succeed(v)
}

// FreeText runs an unconstrained call and returns the trimmed output.
func FreeText(ctx context.Context, client llm.Client, req llm.Request) Outcome[string] {
	req.Schema = nil
	resp, err := client.Generate(ctx, req)
	if err != nil {
		return fail[string](err.Error())
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return fail[string]("empty response")
	}
	return succeed(text)
}

type (
	LessonInput struct {
		Title         string
		Material      string
		DurationHours int
	}

	FeedbackInput struct {
		LessonTitle string
		Score       int
		MaxScore    int
		Percentage  int
		WeakTopics  []string
	}

	// Generator holds the call sites of both generators.
	Generator struct {
		conf    core.GenerationConfig
		metrics Metrics
	}
)

func NewGenerator(conf core.GenerationConfig, metrics Metrics) *Generator {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Generator{conf: conf, metrics: metrics}
}

// LessonContent generates the lesson and flattens it to markdown.
func (g *Generator) LessonContent(ctx context.Context, client llm.Client, in LessonInput) Outcome[string] {
	start := time.Now()
	req := llm.UserPrompt(lessonSystem(g.conf.Language), lessonPrompt(in), g.conf.LessonMaxTokens)
	req.Schema = LessonSchema()

	out := Structured[LessonContent](llm.WithPurpose(ctx, KindLesson), client, req)
	var res Outcome[string]
	if lc, ok := out.Get(); ok {
		res = succeed(lc.Format(LabelsFor(g.conf.Language)))
	} else {
		res = fail[string](FailureReason(out))
	}
	g.observe(KindLesson, res, start)
	return res
}

// Quiz generates the questions checking the generated lesson content.
func (g *Generator) Quiz(ctx context.Context, client llm.Client, lessonTitle, content string) Outcome[[]quiz.Question] {
	start := time.Now()
	req := llm.UserPrompt(quizSystem(g.conf.Language), quizPrompt(lessonTitle, content), g.conf.QuizMaxTokens)
	req.Schema = QuizSchema()

	out := Structured[quizPayload](llm.WithPurpose(ctx, KindQuiz), client, req)
	var res Outcome[[]quiz.Question]
	if p, ok := out.Get(); ok {
		if qs, err := toQuestions(p); err != nil {
			res = fail[[]quiz.Question](err.Error())
		} else {
			res = succeed(qs)
		}
	} else {
		res = fail[[]quiz.Question](FailureReason(out))
	}
	g.observe(KindQuiz, res, start)
	return res
}

// toQuestions re-checks the quiz shape; clients validate against the schema but the mock does not.
func toQuestions(p quizPayload) ([]quiz.Question, error) {
	if n := len(p.Questions); n < quiz.MinQuestions || n > quiz.MaxQuestions {
		return nil, fmt.Errorf("quiz has %d questions, want %d to %d", n, quiz.MinQuestions, quiz.MaxQuestions)
	}
	qs := make([]quiz.Question, 0, len(p.Questions))
	for i, q := range p.Questions {
		if len(q.Options) != quiz.OptionsCount {
			return nil, fmt.Errorf("question %d has %d options, want %d", i+1, len(q.Options), quiz.OptionsCount)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= quiz.OptionsCount {
			return nil, fmt.Errorf("question %d: correct answer %d out of range", i+1, q.CorrectAnswer)
		}
		qs = append(qs, quiz.Question{
			ID:            strings.TrimSpace(q.ID),
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Topic:         strings.TrimSpace(q.Topic),
			Explanation:   q.Explanation,
		})
	}
	return qs, nil
}

func (g *Generator) Feedback(ctx context.Context, client llm.Client, in FeedbackInput) Outcome[string] {
	start := time.Now()
	req := llm.UserPrompt(feedbackSystem(g.conf.Language), feedbackPrompt(in), g.conf.FeedbackMaxTokens)
	res := FreeText(llm.WithPurpose(ctx, KindFeedback), client, req)
	g.observe(KindFeedback, res, start)
	return res
}

// Simplify rewrites lesson content in accessible language.
func (g *Generator) Simplify(ctx context.Context, client llm.Client, content string) Outcome[string] {
	start := time.Now()
	req := llm.UserPrompt(simplifySystem(g.conf.Language), simplifyPrompt(content), g.conf.SimplifyMaxTokens)
	res := FreeText(llm.WithPurpose(ctx, KindSimplify), client, req)
	g.observe(KindSimplify, res, start)
	return res
}

// Ping checks the provider answers at all.
func (g *Generator) Ping(ctx context.Context, client llm.Client) Outcome[string] {
	start := time.Now()
	req := llm.UserPrompt("", testPrompt, g.conf.TestMaxTokens)
	res := FreeText(llm.WithPurpose(ctx, KindTest), client, req)
	g.observe(KindTest, res, start)
	return res
}

func (g *Generator) observe(kind string, o interface{ isOutcome() }, start time.Time) {
	outcome := "success"
	switch o.(type) {
	case Failure[string], Failure[[]quiz.Question]:
		outcome = "failure"
	}
	g.metrics.ObserveGeneration(kind, outcome, time.Since(start))
}
