package course

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrNotEnrolled      = errors.New("enrollment not found")
	ErrAlreadyEnrolled  = errors.New("already enrolled in this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course, lessons []Lesson) (Course, error)
		// GetCourseByID returns the course with its lessons (ordered) and their materials.
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourseStatus(ctx context.Context, id, status string) error

		// GetLessonByID returns the lesson with its materials.
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		UpdateLesson(ctx context.Context, l Lesson) (Lesson, error)
		UpdateLessonContent(ctx context.Context, id, content, status string) error
		UpdateLessonStatus(ctx context.Context, id, status string) error

		CreateMaterial(ctx context.Context, m Material) (Material, error)
		GetMaterialByID(ctx context.Context, id string) (Material, error)
		DeleteMaterial(ctx context.Context, id string) error
		CountMaterials(ctx context.Context, lessonID string) (int, error)

		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error)
		QueryEnrollments(ctx context.Context, studentID string) ([]Enrollment, error)
		UpdateEnrollmentProgress(ctx context.Context, id string, percent int) error
	}

	// FileStore keeps the uploaded material files.
	FileStore interface {
		Put(ctx context.Context, key string, r io.Reader, contentType string) (url string, err error)
		Delete(ctx context.Context, key string) error
	}

	Service struct {
		repo  Repository
		files FileStore
	}
)

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

func (svc *Service) Create(ctx context.Context, teacherID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	c := Course{
		ID:             uuid.New().String(),
		TeacherID:      teacherID,
		ProviderID:     nc.ProviderID,
		Title:          nc.Title,
		Description:    nc.Description,
		TotalHours:     nc.TotalHours,
		HoursPerLesson: nc.HoursPerLesson,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateCourse(ctx, c, PlanLessons(c.ID, nc.TotalHours, nc.HoursPerLesson, now))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// GetOwned returns the Course only if it belongs to the teacher; ErrNotFound otherwise.
func (svc *Service) GetOwned(ctx context.Context, id, teacherID string) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if c.TeacherID != teacherID {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (svc *Service) Activate(ctx context.Context, id, teacherID string) (Course, error) {
	return svc.setStatus(ctx, id, teacherID, StatusActive)
}

func (svc *Service) Archive(ctx context.Context, id, teacherID string) (Course, error) {
	return svc.setStatus(ctx, id, teacherID, StatusArchived)
}

func (svc *Service) setStatus(ctx context.Context, id, teacherID, status string) (Course, error) {
	c, err := svc.GetOwned(ctx, id, teacherID)
	if err != nil {
		return Course{}, err
	}
	if err := svc.repo.UpdateCourseStatus(ctx, id, status); err != nil {
		return Course{}, errors.Wrap(err, "updating course status")
	}
	c.Status = status
	return c, nil
}

func (svc *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

// GetOwnedLesson returns the Lesson and its Course if the course belongs to the teacher.
func (svc *Service) GetOwnedLesson(ctx context.Context, id, teacherID string) (Lesson, Course, error) {
	l, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, Course{}, err
	}
	c, err := svc.GetOwned(ctx, l.CourseID, teacherID)
	if err != nil {
		if err == ErrNotFound {
			return Lesson{}, Course{}, ErrLessonNotFound
		}
		return Lesson{}, Course{}, err
	}
	return l, c, nil
}

func (svc *Service) UpdateLesson(ctx context.Context, id, teacherID string, ul UpdateLesson) (Lesson, error) {
	l, _, err := svc.GetOwnedLesson(ctx, id, teacherID)
	if err != nil {
		return Lesson{}, err
	}
	l.Title = ul.Title
	l.Description = ul.Description
	l.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLesson(ctx, l)
}

// AddMaterial stores the uploaded file, records it against the lesson and marks the lesson materials_uploaded.
func (svc *Service) AddMaterial(ctx context.Context, lessonID, teacherID string, up Upload) (Material, error) {
	l, _, err := svc.GetOwnedLesson(ctx, lessonID, teacherID)
	if err != nil {
		return Material{}, err
	}
	fileType, ok := up.FileType()
	if !ok {
		return Material{}, core.NewFieldValidationError("file", "unsupported file type")
	}

	m := Material{
		ID:        uuid.New().String(),
		LessonID:  l.ID,
		FileName:  filepath.Base(up.FileName),
		FileType:  fileType,
		Size:      up.Size,
		CreatedAt: time.Now().UTC(),
	}
	m.StorageKey = fmt.Sprintf("materials/%s/%s/%s", l.CourseID, l.ID, m.ID+strings.ToLower(filepath.Ext(m.FileName)))
	if up.IsPlainText() && utf8.Valid(up.Content) {
		m.ExtractedText = strings.TrimSpace(string(up.Content))
	}

	if m.FileURL, err = svc.files.Put(ctx, m.StorageKey, bytes.NewReader(up.Content), up.ContentType); err != nil {
		return Material{}, errors.Wrap(err, "storing material file")
	}
	if m, err = svc.repo.CreateMaterial(ctx, m); err != nil {
		return Material{}, errors.Wrap(err, "creating material")
	}
	if l.Status == LessonPending {
		if err = svc.repo.UpdateLessonStatus(ctx, l.ID, LessonMaterialsUploaded); err != nil {
			return Material{}, errors.Wrap(err, "updating lesson status")
		}
	}
	return m, nil
}

// RemoveMaterial deletes the material; a lesson left without materials goes back to pending.
func (svc *Service) RemoveMaterial(ctx context.Context, id, teacherID string) error {
	m, err := svc.repo.GetMaterialByID(ctx, id)
	if err != nil {
		return err
	}
	l, _, err := svc.GetOwnedLesson(ctx, m.LessonID, teacherID)
	if err != nil {
		if err == ErrLessonNotFound {
			return ErrMaterialNotFound
		}
		return err
	}

	if err = svc.repo.DeleteMaterial(ctx, id); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	if err = svc.files.Delete(ctx, m.StorageKey); err != nil {
		return errors.Wrap(err, "deleting material file")
	}

	count, err := svc.repo.CountMaterials(ctx, l.ID)
	if err != nil {
		return errors.Wrap(err, "counting materials")
	}
	if count == 0 && l.Status == LessonMaterialsUploaded {
		if err = svc.repo.UpdateLessonStatus(ctx, l.ID, LessonPending); err != nil {
			return errors.Wrap(err, "updating lesson status")
		}
	}
	return nil
}

// Enroll enrolls the student in an active course.
func (svc *Service) Enroll(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	c, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if c.Status != StatusActive {
		return Enrollment{}, ErrNotFound
	}
	if _, err = svc.repo.GetEnrollment(ctx, studentID, courseID); err == nil {
		return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled)
	} else if err != ErrNotEnrolled {
		return Enrollment{}, errors.Wrap(err, "getting enrollment")
	}

	e, err := svc.repo.CreateEnrollment(ctx, Enrollment{StudentID: studentID, CourseID: courseID, EnrolledAt: time.Now().UTC()})
	if err != nil {
		return Enrollment{}, err
	}
	c.Lessons = nil
	e.Course = &c
	return e, nil
}

func (svc *Service) Enrollments(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, studentID)
}

func (svc *Service) GetEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, studentID, courseID)
}

// GetStudentLesson returns a lesson of a course the student is enrolled in.
func (svc *Service) GetStudentLesson(ctx context.Context, id, studentID string) (Lesson, Course, error) {
	l, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, Course{}, err
	}
	if _, err = svc.repo.GetEnrollment(ctx, studentID, l.CourseID); err != nil {
		if err == ErrNotEnrolled {
			return Lesson{}, Course{}, ErrLessonNotFound
		}
		return Lesson{}, Course{}, err
	}
	c, err := svc.repo.GetCourseByID(ctx, l.CourseID)
	if err != nil {
		return Lesson{}, Course{}, err
	}
	return l, c, nil
}

// UpdateProgress sets the student's progress from the number of lessons they completed.
func (svc *Service) UpdateProgress(ctx context.Context, studentID string, c Course, completedLessons int) error {
	e, err := svc.repo.GetEnrollment(ctx, studentID, c.ID)
	if err != nil {
		return err
	}
	percent := 0
	if total := len(c.Lessons); total > 0 {
		percent = completedLessons * 100 / total
	}
	if percent > 100 {
		percent = 100
	}
	if percent == e.ProgressPercent {
		return nil
	}
	return svc.repo.UpdateEnrollmentProgress(ctx, e.ID, percent)
}
