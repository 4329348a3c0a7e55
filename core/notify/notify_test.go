package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/notify"
	emailsvc "github.com/trezcool/darslik/services/email"
	"github.com/trezcool/darslik/storage/database/inmem"
	"github.com/trezcool/darslik/tests"
)

var ctxBg = context.Background()

func setup(t *testing.T) (*notify.Service, *emailsvc.ConsoleServiceMock) {
	conf := core.NewTestConfig()
	logger := testutil.NopLogger{}
	core.ParseEmailTemplates(conf, logger)

	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	return notify.NewService(inmem.NewNotifyRepository(inmem.NewDB()), mailSvc), mailSvc
}

func TestQuizOutcome_Struggling(t *testing.T) {
	assert.True(t, notify.QuizOutcome{Score: 2, MaxScore: 5}.Struggling())
	assert.False(t, notify.QuizOutcome{Score: 3, MaxScore: 6}.Struggling())
	assert.False(t, notify.QuizOutcome{Score: 5, MaxScore: 5}.Struggling())
}

func TestService_NotifyTeacher(t *testing.T) {
	svc, mailSvc := setup(t)

	tests := []struct {
		name     string
		outcome  notify.QuizOutcome
		wantType string
		wantMsg  string
		wantMail bool
	}{
		{
			name:     "great result",
			outcome:  notify.QuizOutcome{StudentName: "Aziz", TeacherEmail: "t@test.cd", Score: 5, MaxScore: 5},
			wantType: notify.TypeQuizCompleted,
			wantMsg:  "Result: 5/5. Great result!",
		},
		{
			name:     "weak topics",
			outcome:  notify.QuizOutcome{StudentName: "Aziz", TeacherEmail: "t@test.cd", Score: 3, MaxScore: 5, WeakTopics: []string{"fractions"}},
			wantType: notify.TypeQuizCompleted,
			wantMsg:  "Result: 3/5. Weak topics: fractions",
		},
		{
			name: "struggling",
			outcome: notify.QuizOutcome{
				TeacherName: "Teacher", TeacherEmail: "t@test.cd", StudentName: "Aziz", LessonTitle: "Fractions",
				Score: 1, MaxScore: 5, WeakTopics: []string{"fractions", "decimals"},
			},
			wantType: notify.TypeStudentStruggling,
			wantMsg:  "Result: 1/5. Weak topics: fractions, decimals",
			wantMail: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentBefore := len(mailSvc.SentMessages())

			n, err := svc.NotifyTeacher(ctxBg, "teacher-1", tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, n.Type)
			assert.Equal(t, "Aziz finished the test", n.Title)
			assert.Equal(t, tt.wantMsg, n.Message)
			assert.False(t, n.IsRead)

			sent := mailSvc.SentMessages()
			if !tt.wantMail {
				assert.Len(t, sent, sentBefore)
				return
			}
			require.Len(t, sent, sentBefore+1)
			msg := sent[len(sent)-1]
			assert.Equal(t, "t@test.cd", msg.To[0].Address)
			assert.Contains(t, msg.TextContent, "Fractions")
		})
	}
}

func TestService_readFlags(t *testing.T) {
	svc, _ := setup(t)

	first, err := svc.NotifyEnrollment(ctxBg, "teacher-1", "Aziz", "Maths")
	require.NoError(t, err)
	assert.Equal(t, notify.TypeCourseEnrolled, first.Type)
	assert.Equal(t, `Aziz enrolled in "Maths".`, first.Message)
	_, err = svc.NotifyEnrollment(ctxBg, "teacher-1", "Bobur", "Maths")
	require.NoError(t, err)
	_, err = svc.NotifyEnrollment(ctxBg, "teacher-2", "Bobur", "Physics")
	require.NoError(t, err)

	require.NoError(t, svc.MarkNotificationsRead(ctxBg, "teacher-1", first.ID))
	unread, err := svc.Notifications(ctxBg, "teacher-1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEqual(t, first.ID, unread[0].ID)

	require.NoError(t, svc.MarkNotificationsRead(ctxBg, "teacher-1"))
	unread, err = svc.Notifications(ctxBg, "teacher-1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := svc.Notifications(ctxBg, "teacher-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unread, err = svc.Notifications(ctxBg, "teacher-2", true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	rec, err := svc.RecommendWeakTopics(ctxBg, "student-1", "lesson-1", []string{"fractions", "decimals"})
	require.NoError(t, err)
	assert.Equal(t, "Review these topics: fractions, decimals", rec.Content)
	require.NoError(t, svc.MarkRecommendationsRead(ctxBg, "student-1", rec.ID))
	recs, err := svc.Recommendations(ctxBg, "student-1", true)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
