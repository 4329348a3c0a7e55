// Package inmem keeps every repository in process memory. It backs the tests and the local demo mode.
package inmem

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
)

// DB holds the tables shared by the repositories created from it.
type DB struct {
	mu sync.RWMutex

	users           map[string]*user.User
	providers       map[string]*provider.Provider
	courses         map[string]*course.Course
	lessons         map[string]*course.Lesson
	materials       map[string]*course.Material
	enrollments     map[string]*course.Enrollment
	quizzes         map[string]*quiz.Quiz
	results         map[string]*quiz.Result
	notifications   map[string]*notify.Notification
	recommendations map[string]*notify.Recommendation
}

func NewDB() *DB {
	return &DB{
		users:           make(map[string]*user.User),
		providers:       make(map[string]*provider.Provider),
		courses:         make(map[string]*course.Course),
		lessons:         make(map[string]*course.Lesson),
		materials:       make(map[string]*course.Material),
		enrollments:     make(map[string]*course.Enrollment),
		quizzes:         make(map[string]*quiz.Quiz),
		results:         make(map[string]*quiz.Result),
		notifications:   make(map[string]*notify.Notification),
		recommendations: make(map[string]*notify.Recommendation),
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
