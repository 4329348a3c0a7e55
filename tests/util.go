package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
)

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateProvider(t *testing.T, repo provider.Repository, teacherID string, vendor provider.Vendor, model string, isActive bool) provider.Provider {
	now := time.Now().UTC()
	p, err := repo.CreateProvider(context.Background(), provider.Provider{
		TeacherID: teacherID,
		Name:      fmt.Sprintf("%s %s", vendor, model),
		Vendor:    vendor,
		Model:     model,
		APIKey:    "sk-test-1234",
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createProvider() failed: %v", err)
	}
	return p
}

// CreateCourse creates a course with `lessons` one-hour lessons.
func CreateCourse(t *testing.T, repo course.Repository, teacherID, providerID, title, status string, lessons int) course.Course {
	now := time.Now().UTC()
	c := course.Course{
		TeacherID:      teacherID,
		ProviderID:     providerID,
		Title:          title,
		TotalHours:     lessons,
		HoursPerLesson: 1,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	c, err := repo.CreateCourse(context.Background(), c, course.PlanLessons("", lessons, 1, now))
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return c
}

func AddMaterial(t *testing.T, repo course.Repository, lessonID, fileName, text string) course.Material {
	ft, _ := course.Upload{FileName: fileName}.FileType()
	m, err := repo.CreateMaterial(context.Background(), course.Material{
		LessonID:      lessonID,
		FileName:      fileName,
		FileType:      ft,
		FileURL:       "http://files.test/" + fileName,
		StorageKey:    "materials/" + fileName,
		ExtractedText: text,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("addMaterial() failed: %v", err)
	}
	return m
}

func Enroll(t *testing.T, repo course.Repository, studentID, courseID string) course.Enrollment {
	e, err := repo.CreateEnrollment(context.Background(), course.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("enroll() failed: %v", err)
	}
	return e
}

// Questions returns n questions on `topics` (cycled); the correct answer is always option 0.
func Questions(n int, topics ...string) []quiz.Question {
	if len(topics) == 0 {
		topics = []string{"general"}
	}
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"right", "wrong 1", "wrong 2", "wrong 3"},
			CorrectAnswer: 0,
			Topic:         topics[i%len(topics)],
		}
	}
	return qs
}

func CreateQuiz(t *testing.T, repo quiz.Repository, l course.Lesson, questions []quiz.Question) quiz.Quiz {
	q, err := repo.UpsertQuiz(context.Background(), quiz.NewLessonQuiz(l, questions))
	if err != nil {
		t.Fatalf("createQuiz() failed: %v", err)
	}
	return q
}
