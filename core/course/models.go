package course

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/trezcool/darslik/core"
)

// Course statuses
const (
	StatusDraft      = "draft"
	StatusGenerating = "generating"
	StatusActive     = "active"
	StatusArchived   = "archived"
)

// Lesson statuses
const (
	LessonPending           = "pending"
	LessonMaterialsUploaded = "materials_uploaded"
	LessonGenerating        = "generating"
	LessonReady             = "ready"
)

// FileTypes maps accepted material extensions to their file type.
var FileTypes = map[string]string{
	".pdf":  "pdf",
	".docx": "docx",
	".doc":  "doc",
	".pptx": "pptx",
	".ppt":  "ppt",
	".txt":  "txt",
	".md":   "md",
}

type Course struct {
	ID             string    `json:"id"`
	TeacherID      string    `json:"teacher_id"`
	ProviderID     string    `json:"provider_id,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	TotalHours     int       `json:"total_hours"`
	HoursPerLesson int       `json:"hours_per_lesson"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
	Lessons        []Lesson  `json:"lessons,omitempty"`
}

type Lesson struct {
	ID            string     `json:"id"`
	CourseID      string     `json:"course_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	OrderIndex    int        `json:"order_index"`
	DurationHours int        `json:"duration_hours"`
	Content       string     `json:"content,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"` // UTC
	UpdatedAt     time.Time  `json:"updated_at"` // UTC
	Materials     []Material `json:"materials,omitempty"`
}

type Material struct {
	ID            string    `json:"id"`
	LessonID      string    `json:"lesson_id"`
	FileName      string    `json:"file_name"`
	FileType      string    `json:"file_type"`
	FileURL       string    `json:"file_url"`
	StorageKey    string    `json:"-"`
	Size          int64     `json:"size"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// Text returns what a generator may read of the material: its extracted text, or a placeholder naming the file.
func (m Material) Text() string {
	if txt := strings.TrimSpace(m.ExtractedText); txt != "" {
		return txt
	}
	return fmt.Sprintf("[File: %s]", m.FileName)
}

type Enrollment struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	CourseID        string    `json:"course_id"`
	ProgressPercent int       `json:"progress_percent"`
	EnrolledAt      time.Time `json:"enrolled_at"` // UTC
	Course          *Course   `json:"course,omitempty"`
}

// NewCourse contains information needed to create a Course and plan its lessons.
type NewCourse struct {
	Title          string `json:"title" validate:"required,notblank,max=200"`
	Description    string `json:"description"`
	TotalHours     int    `json:"total_hours" validate:"required,min=1,max=1000"`
	HoursPerLesson int    `json:"hours_per_lesson" validate:"required,min=1"`
	ProviderID     string `json:"provider_id" validate:"omitempty,uuid"`
}

func (nc *NewCourse) Clean() {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.ProviderID = core.CleanString(nc.ProviderID)
}

// UpdateLesson defines what a teacher may change on a Lesson.
type UpdateLesson struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description"`
}

func (ul *UpdateLesson) Clean() {
	ul.Title = core.CleanString(ul.Title)
	ul.Description = core.CleanString(ul.Description)
}

// Upload is a material file received from a teacher.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     []byte
}

// FileType returns the material type of the upload, if accepted.
func (u Upload) FileType() (string, bool) {
	ft, ok := FileTypes[strings.ToLower(filepath.Ext(u.FileName))]
	return ft, ok
}

// IsPlainText reports whether the upload content can be kept as extracted text as is.
func (u Upload) IsPlainText() bool {
	ft, _ := u.FileType()
	return ft == "txt" || ft == "md"
}

type QueryFilter struct {
	TeacherID string
	Status    string
}

// PlanLessons splits a course into ceil(total/perLesson) pending lessons; the last one gets the remaining hours.
func PlanLessons(courseID string, totalHours, hoursPerLesson int, now time.Time) []Lesson {
	if totalHours <= 0 || hoursPerLesson <= 0 {
		return nil
	}
	count := (totalHours + hoursPerLesson - 1) / hoursPerLesson
	lessons := make([]Lesson, 0, count)
	remaining := totalHours
	for i := 1; i <= count; i++ {
		duration := hoursPerLesson
		if remaining < duration {
			duration = remaining
		}
		remaining -= duration
		lessons = append(lessons, Lesson{
			CourseID:      courseID,
			Title:         fmt.Sprintf("Lesson %d", i),
			OrderIndex:    i,
			DurationHours: duration,
			Status:        LessonPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return lessons
}

// OrderingFields are the fields courses can be listed by: {query field: column}.
var OrderingFields = map[string]string{
	"title":      "title",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}
