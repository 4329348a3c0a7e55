package sqlxrepos_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
	"github.com/trezcool/darslik/storage/database"
	sqlxrepos "github.com/trezcool/darslik/storage/database/sqlx"
	testutil "github.com/trezcool/darslik/tests"
)

// openTestDB connects to TEST_DATABASE_URL and resets the schema; the test is skipped without it.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	_, err = db.Exec(`TRUNCATE users, ai_providers, courses, lessons, lesson_materials, enrollments,
		quizzes, quiz_results, notifications, ai_recommendations CASCADE`)
	require.NoError(t, err)
	return db
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := sqlxrepos.NewUserRepository(db)

	teacher := testutil.CreateUser(t, repo, "Teacher", "teacher", "teacher@example.com", "pwd", []string{user.RoleTeacher}, true)

	err := repo.CheckUsernameUniqueness(ctx, "teacher", "other@example.com")
	assert.Equal(t, user.ErrUserExists, err)
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "teacher", "teacher@example.com", teacher))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "", "new@example.com"))

	got, err := repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{"teacher@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, got.ID)
	assert.True(t, got.IsTeacher())
	assert.NoError(t, got.CheckPassword("pwd"))

	_, err = repo.GetUser(ctx, user.GetFilter{ID: "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, user.ErrNotFound, err)

	got.Name = "Renamed"
	_, err = repo.UpdateOrCreateUser(ctx, got)
	require.NoError(t, err)
	got, err = repo.GetUser(ctx, user.GetFilter{ID: teacher.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	assert.NoError(t, repo.SetLastLogin(ctx, teacher.ID, time.Now().UTC()))
}

func TestCourseAndQuizRepositories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	usrRepo := sqlxrepos.NewUserRepository(db)
	provRepo := sqlxrepos.NewProviderRepository(db)
	courseRepo := sqlxrepos.NewCourseRepository(db)
	quizRepo := sqlxrepos.NewQuizRepository(db)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@example.com", "pwd", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@example.com", "pwd", []string{user.RoleStudent}, true)
	prov := testutil.CreateProvider(t, provRepo, teacher.ID, provider.VendorOpenAI, "gpt-4o-mini", true)

	c := testutil.CreateCourse(t, courseRepo, teacher.ID, prov.ID, "Biology", course.StatusDraft, 3)
	require.Len(t, c.Lessons, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{c.Lessons[0].OrderIndex, c.Lessons[1].OrderIndex, c.Lessons[2].OrderIndex})

	lesson := c.Lessons[0]
	testutil.AddMaterial(t, courseRepo, lesson.ID, "notes.txt", "Plants convert light.")
	count, err := courseRepo.CountMaterials(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, courseRepo.UpdateLessonContent(ctx, lesson.ID, "# Lesson", course.LessonReady))
	got, err := courseRepo.GetLessonByID(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, course.LessonReady, got.Status)
	require.Len(t, got.Materials, 1)
	assert.Equal(t, "Plants convert light.", got.Materials[0].ExtractedText)

	courses, err := courseRepo.QueryCourses(ctx, course.QueryFilter{TeacherID: teacher.ID}, []core.DBOrdering{{Field: "title", Ascending: true}})
	require.NoError(t, err)
	require.Len(t, courses, 1)

	first := testutil.CreateQuiz(t, quizRepo, lesson, testutil.Questions(5, "photosynthesis"))
	second, err := quizRepo.UpsertQuiz(ctx, quiz.Quiz{LessonID: lesson.ID, Title: "again", Questions: testutil.Questions(7)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Questions, 7)

	e := testutil.Enroll(t, courseRepo, student.ID, c.ID)
	_, err = courseRepo.CreateEnrollment(ctx, course.Enrollment{StudentID: student.ID, CourseID: c.ID, EnrolledAt: time.Now().UTC()})
	assert.Equal(t, course.ErrAlreadyEnrolled, err)

	res, err := quizRepo.CreateResult(ctx, quiz.Result{
		QuizID:      second.ID,
		StudentID:   student.ID,
		Answers:     []int{0, 1, 0, -1, 0, 0, 0},
		Score:       5,
		MaxScore:    7,
		WeakTopics:  []string{"light"},
		CompletedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, quizRepo.SetResultFeedback(ctx, res.ID, "Good job"))

	saved, err := quizRepo.GetResultByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, -1, 0, 0, 0}, saved.Answers)
	assert.Equal(t, "Good job", saved.AIFeedback)

	done, err := quizRepo.CountCompletedLessons(ctx, student.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, done)

	enrollments, err := courseRepo.QueryEnrollments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, e.ID, enrollments[0].ID)
	require.NotNil(t, enrollments[0].Course)
	assert.Equal(t, "Biology", enrollments[0].Course.Title)

	require.NoError(t, provRepo.DeleteProvider(ctx, prov.ID))
	c, err = courseRepo.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, c.ProviderID)
}

func TestNotifyRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewNotifyRepository(db)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@example.com", "pwd", []string{user.RoleTeacher}, true)
	for _, title := range []string{"one", "two"} {
		_, err := repo.CreateNotification(ctx, notify.Notification{
			UserID:    teacher.ID,
			Type:      notify.TypeQuizCompleted,
			Title:     title,
			Message:   "msg",
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	unread, err := repo.QueryNotifications(ctx, teacher.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	require.NoError(t, repo.MarkNotificationsRead(ctx, teacher.ID, unread[0].ID))
	unread, err = repo.QueryNotifications(ctx, teacher.ID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, repo.MarkNotificationsRead(ctx, teacher.ID))
	unread, err = repo.QueryNotifications(ctx, teacher.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
