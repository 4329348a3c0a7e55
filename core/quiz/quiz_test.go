package quiz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
	emailsvc "github.com/trezcool/darslik/services/email"
	filesvc "github.com/trezcool/darslik/services/files"
	"github.com/trezcool/darslik/storage/database/inmem"
	"github.com/trezcool/darslik/tests"
)

var ctxBg = context.Background()

func TestScore(t *testing.T) {
	questions := testutil.Questions(4, "algebra", "equations")
	tests := []struct {
		name      string
		answers   []int
		wantScore int
		wantWeak  []string
	}{
		{name: "all correct", answers: []int{0, 0, 0, 0}, wantScore: 4, wantWeak: []string{}},
		{name: "one topic missed", answers: []int{0, 1, 0, -1}, wantScore: 2, wantWeak: []string{"equations"}},
		{name: "all wrong", answers: []int{3, 2, 1, 1}, wantWeak: []string{"algebra", "equations"}},
		{name: "missing answers are wrong", answers: []int{0}, wantScore: 1, wantWeak: []string{"equations", "algebra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, weak := quiz.Score(questions, tt.answers)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantWeak, weak)
		})
	}
}

func TestTemplateFeedback(t *testing.T) {
	tests := []struct {
		name       string
		language   string
		weakTopics []string
		want       string
	}{
		{name: "uzbek congrats", language: "uzbek", want: "Ajoyib natija! Davom eting!"},
		{
			name:       "uzbek review",
			language:   "Uzbek",
			weakTopics: []string{"algebra", "equations"},
			want:       "Sizga quyidagi mavzularda qo'shimcha o'rganish tavsiya etiladi: algebra, equations",
		},
		{name: "russian congrats", language: "russian", want: "Отличный результат! Продолжайте!"},
		{
			name:       "english review",
			language:   " english ",
			weakTopics: []string{"algebra"},
			want:       "You are advised to study the following topics further: algebra",
		},
		{name: "unknown language", language: "klingon", want: "Great job! Keep it up!"},
		{name: "empty language", weakTopics: []string{"a", "b"}, want: "You are advised to study the following topics further: a, b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quiz.TemplateFeedback(tt.language, tt.weakTopics))
		})
	}
}

func TestResult_Percentage(t *testing.T) {
	assert.Equal(t, 0, quiz.Result{}.Percentage())
	assert.Equal(t, 50, quiz.Result{Score: 2, MaxScore: 4}.Percentage())
	assert.Equal(t, 67, quiz.Result{Score: 2, MaxScore: 3}.Percentage())
	assert.Equal(t, 100, quiz.Result{Score: 7, MaxScore: 7}.Percentage())
}

func TestQuiz_Public(t *testing.T) {
	qs := testutil.Questions(2, "cells")
	qs[0].Explanation = "Because."
	pq := quiz.Quiz{ID: "quiz-1", LessonID: "lesson-1", Title: "Cells - Test", Questions: qs}.Public()

	assert.Equal(t, "quiz-1", pq.ID)
	require.Len(t, pq.Questions, 2)
	assert.Equal(t, quiz.PublicQuestion{ID: "q1", Question: "Question 1?", Options: qs[0].Options, Topic: "cells"}, pq.Questions[0])
}

func TestNewLessonQuiz(t *testing.T) {
	qs := testutil.Questions(2)
	qs[1].ID = ""
	q := quiz.NewLessonQuiz(course.Lesson{ID: "lesson-1", Title: "Cells"}, qs)

	assert.Equal(t, "lesson-1", q.LessonID)
	assert.Equal(t, "Cells - Test", q.Title)
	assert.Equal(t, "q1", q.Questions[0].ID)
	assert.NotEmpty(t, q.Questions[1].ID)
}

type env struct {
	svc        *quiz.Service
	usrRepo    user.Repository
	courseRepo course.Repository
	quizRepo   quiz.Repository
	notifySvc  *notify.Service
	mailSvc    *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) env {
	conf := core.NewTestConfig()
	logger := testutil.NopLogger{}
	core.ParseEmailTemplates(conf, logger)

	db := inmem.NewDB()
	files, err := filesvc.NewLocalStore(t.TempDir(), "http://files.test")
	require.NoError(t, err)

	e := env{
		usrRepo:    inmem.NewUserRepository(db),
		courseRepo: inmem.NewCourseRepository(db),
		quizRepo:   inmem.NewQuizRepository(db),
		mailSvc:    emailsvc.NewConsoleServiceMock(conf, logger),
	}
	e.notifySvc = notify.NewService(inmem.NewNotifyRepository(db), e.mailSvc)
	e.svc = quiz.NewService(e.quizRepo, course.NewService(e.courseRepo, files), user.NewService(e.usrRepo), e.notifySvc, conf.Generation.Language)
	return e
}

func TestService_Submit(t *testing.T) {
	e := setup(t)
	teacher := testutil.CreateUser(t, e.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, e.usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true)
	outsider := testutil.CreateUser(t, e.usrRepo, "Outsider", "outsider", "outsider@test.cd", "", []string{user.RoleStudent}, true)

	c := testutil.CreateCourse(t, e.courseRepo, teacher.ID, "", "Maths", course.StatusActive, 4)
	testutil.Enroll(t, e.courseRepo, student.ID, c.ID)
	q := testutil.CreateQuiz(t, e.quizRepo, c.Lessons[0], testutil.Questions(4, "algebra", "equations"))

	t.Run("unknown quiz", func(t *testing.T) {
		_, err := e.svc.Submit(ctxBg, student, "b2a3c1de-8f2b-4a1c-9c0e-1d2e3f4a5b6c", quiz.Submission{Answers: []int{0}})
		assert.Equal(t, quiz.ErrNotFound, err)
	})

	t.Run("not enrolled", func(t *testing.T) {
		_, err := e.svc.Submit(ctxBg, outsider, q.ID, quiz.Submission{Answers: []int{0, 0, 0, 0}})
		assert.Equal(t, quiz.ErrNotFound, err)
	})

	t.Run("wrong answer count", func(t *testing.T) {
		_, err := e.svc.Submit(ctxBg, student, q.ID, quiz.Submission{Answers: []int{0, 0}})
		var verr *core.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("weak topic", func(t *testing.T) {
		resp, err := e.svc.Submit(ctxBg, student, q.ID, quiz.Submission{Answers: []int{0, 1, 0, -1}})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Result.Score)
		assert.Equal(t, 4, resp.Result.MaxScore)
		assert.Equal(t, []string{"equations"}, resp.Result.WeakTopics)
		assert.Contains(t, resp.Feedback, "equations")

		recs, err := e.notifySvc.Recommendations(ctxBg, student.ID, true)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, notify.RecommendWeakTopic, recs[0].Type)
		assert.Equal(t, c.Lessons[0].ID, recs[0].LessonID)

		notes, err := e.notifySvc.Notifications(ctxBg, teacher.ID, true)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, notify.TypeQuizCompleted, notes[0].Type)
		assert.Empty(t, e.mailSvc.SentMessages())

		enr, err := e.courseRepo.GetEnrollment(ctxBg, student.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, enr.ProgressPercent)
	})

	t.Run("struggling student", func(t *testing.T) {
		_, err := e.svc.Submit(ctxBg, student, q.ID, quiz.Submission{Answers: []int{1, 1, 1, 1}})
		require.NoError(t, err)

		notes, err := e.notifySvc.Notifications(ctxBg, teacher.ID, true)
		require.NoError(t, err)
		require.Len(t, notes, 2)

		sent := e.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, teacher.Email, sent[0].To[0].Address)
		assert.Equal(t, "student_struggling", sent[0].TemplateName)

		enr, err := e.courseRepo.GetEnrollment(ctxBg, student.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, enr.ProgressPercent)
	})

	t.Run("perfect score", func(t *testing.T) {
		resp, err := e.svc.Submit(ctxBg, student, q.ID, quiz.Submission{Answers: []int{0, 0, 0, 0}})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Result.Score)
		assert.Empty(t, resp.Result.WeakTopics)
		assert.Equal(t, "Ajoyib natija! Davom eting!", resp.Feedback)

		recs, err := e.notifySvc.Recommendations(ctxBg, student.ID, false)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})
}
