package inmem

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course, lessons []course.Lesson) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = newID(c.ID)
	cc := c
	cc.Lessons = nil
	repo.db.courses[c.ID] = &cc
	for _, l := range lessons {
		l.ID = newID(l.ID)
		l.CourseID = c.ID
		l.Materials = nil
		repo.db.lessons[l.ID] = &l
	}
	return repo.course(c.ID), nil
}

// course returns the course with its ordered lessons and their materials; callers hold the lock.
func (repo *courseRepository) course(id string) course.Course {
	c := *repo.db.courses[id]
	c.Lessons = make([]course.Lesson, 0)
	for _, l := range repo.db.lessons {
		if l.CourseID == id {
			c.Lessons = append(c.Lessons, repo.lesson(l.ID))
		}
	}
	sort.Slice(c.Lessons, func(i, j int) bool { return c.Lessons[i].OrderIndex < c.Lessons[j].OrderIndex })
	return c
}

func (repo *courseRepository) lesson(id string) course.Lesson {
	l := *repo.db.lessons[id]
	l.Materials = make([]course.Material, 0)
	for _, m := range repo.db.materials {
		if m.LessonID == id {
			l.Materials = append(l.Materials, *m)
		}
	}
	sort.Slice(l.Materials, func(i, j int) bool {
		a, b := l.Materials[i], l.Materials[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return l
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	return repo.course(id), nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]course.Course, 0)
	for _, c := range repo.db.courses {
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		courses = append(courses, *c)
	}

	ordering = core.CleanOrderings(ordering, course.OrderingFields)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(courses, func(i, j int) bool {
		for _, ord := range ordering {
			cmp := compareCourses(courses[i], courses[j], ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return courses, nil
}

func compareCourses(a, b course.Course, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (repo *courseRepository) UpdateCourseStatus(_ context.Context, id, status string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c, ok := repo.db.courses[id]
	if !ok {
		return course.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *courseRepository) GetLessonByID(_ context.Context, id string) (course.Lesson, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if _, ok := repo.db.lessons[id]; !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	return repo.lesson(id), nil
}

func (repo *courseRepository) UpdateLesson(_ context.Context, l course.Lesson) (course.Lesson, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.lessons[l.ID]
	if !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	orig.Title = l.Title
	orig.Description = l.Description
	orig.UpdatedAt = l.UpdatedAt
	return repo.lesson(l.ID), nil
}

func (repo *courseRepository) UpdateLessonContent(_ context.Context, id, content, status string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	l, ok := repo.db.lessons[id]
	if !ok {
		return course.ErrLessonNotFound
	}
	l.Content = content
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *courseRepository) UpdateLessonStatus(_ context.Context, id, status string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	l, ok := repo.db.lessons[id]
	if !ok {
		return course.ErrLessonNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *courseRepository) CreateMaterial(_ context.Context, m course.Material) (course.Material, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.lessons[m.LessonID]; !ok {
		return course.Material{}, course.ErrLessonNotFound
	}
	m.ID = newID(m.ID)
	cm := m
	repo.db.materials[m.ID] = &cm
	return m, nil
}

func (repo *courseRepository) GetMaterialByID(_ context.Context, id string) (course.Material, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.materials[id]; ok {
		return *m, nil
	}
	return course.Material{}, course.ErrMaterialNotFound
}

func (repo *courseRepository) DeleteMaterial(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.materials[id]; !ok {
		return course.ErrMaterialNotFound
	}
	delete(repo.db.materials, id)
	return nil
}

func (repo *courseRepository) CountMaterials(_ context.Context, lessonID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	count := 0
	for _, m := range repo.db.materials {
		if m.LessonID == lessonID {
			count++
		}
	}
	return count, nil
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, e course.Enrollment) (course.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, other := range repo.db.enrollments {
		if other.StudentID == e.StudentID && other.CourseID == e.CourseID {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
	}
	e.ID = newID(e.ID)
	e.Course = nil
	ce := e
	repo.db.enrollments[e.ID] = &ce
	return e, nil
}

func (repo *courseRepository) GetEnrollment(_ context.Context, studentID, courseID string) (course.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, e := range repo.db.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return *e, nil
		}
	}
	return course.Enrollment{}, course.ErrNotEnrolled
}

// QueryEnrollments returns the student's enrollments with their course (without lessons), latest first.
func (repo *courseRepository) QueryEnrollments(_ context.Context, studentID string) ([]course.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, e := range repo.db.enrollments {
		if e.StudentID != studentID {
			continue
		}
		ce := *e
		if c, ok := repo.db.courses[e.CourseID]; ok {
			cc := *c
			ce.Course = &cc
		}
		enrollments = append(enrollments, ce)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt) })
	return enrollments, nil
}

func (repo *courseRepository) UpdateEnrollmentProgress(_ context.Context, id string, percent int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	e, ok := repo.db.enrollments[id]
	if !ok {
		return course.ErrNotEnrolled
	}
	e.ProgressPercent = percent
	return nil
}
