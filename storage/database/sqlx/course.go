package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
)

type (
	courseRow struct {
		ID             string      `db:"id"`
		TeacherID      string      `db:"teacher_id"`
		ProviderID     null.String `db:"provider_id"`
		Title          string      `db:"title"`
		Description    string      `db:"description"`
		TotalHours     int         `db:"total_hours"`
		HoursPerLesson int         `db:"hours_per_lesson"`
		Status         string      `db:"status"`
		CreatedAt      time.Time   `db:"created_at"`
		UpdatedAt      time.Time   `db:"updated_at"`
	}

	lessonRow struct {
		ID            string    `db:"id"`
		CourseID      string    `db:"course_id"`
		Title         string    `db:"title"`
		Description   string    `db:"description"`
		OrderIndex    int       `db:"order_index"`
		DurationHours int       `db:"duration_hours"`
		Content       string    `db:"content"`
		Status        string    `db:"status"`
		CreatedAt     time.Time `db:"created_at"`
		UpdatedAt     time.Time `db:"updated_at"`
	}

	materialRow struct {
		ID            string    `db:"id"`
		LessonID      string    `db:"lesson_id"`
		FileName      string    `db:"file_name"`
		FileType      string    `db:"file_type"`
		FileURL       string    `db:"file_url"`
		StorageKey    string    `db:"storage_key"`
		Size          int64     `db:"size"`
		ExtractedText string    `db:"extracted_text"`
		CreatedAt     time.Time `db:"created_at"`
	}

	enrollmentRow struct {
		ID              string    `db:"id"`
		StudentID       string    `db:"student_id"`
		CourseID        string    `db:"course_id"`
		ProgressPercent int       `db:"progress_percent"`
		EnrolledAt      time.Time `db:"enrolled_at"`
	}
)

const (
	courseColumns     = `id, teacher_id, provider_id, title, description, total_hours, hours_per_lesson, status, created_at, updated_at`
	lessonColumns     = `id, course_id, title, description, order_index, duration_hours, content, status, created_at, updated_at`
	materialColumns   = `id, lesson_id, file_name, file_type, file_url, storage_key, size, extracted_text, created_at`
	enrollmentColumns = `id, student_id, course_id, progress_percent, enrolled_at`
)

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:             row.ID,
		TeacherID:      row.TeacherID,
		ProviderID:     row.ProviderID.String,
		Title:          row.Title,
		Description:    row.Description,
		TotalHours:     row.TotalHours,
		HoursPerLesson: row.HoursPerLesson,
		Status:         row.Status,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

func (row lessonRow) toLesson() course.Lesson {
	return course.Lesson{
		ID:            row.ID,
		CourseID:      row.CourseID,
		Title:         row.Title,
		Description:   row.Description,
		OrderIndex:    row.OrderIndex,
		DurationHours: row.DurationHours,
		Content:       row.Content,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
		Materials:     make([]course.Material, 0),
	}
}

func (row materialRow) toMaterial() course.Material {
	return course.Material{
		ID:            row.ID,
		LessonID:      row.LessonID,
		FileName:      row.FileName,
		FileType:      row.FileType,
		FileURL:       row.FileURL,
		StorageKey:    row.StorageKey,
		Size:          row.Size,
		ExtractedText: row.ExtractedText,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func (row enrollmentRow) toEnrollment() course.Enrollment {
	return course.Enrollment{
		ID:              row.ID,
		StudentID:       row.StudentID,
		CourseID:        row.CourseID,
		ProgressPercent: row.ProgressPercent,
		EnrolledAt:      row.EnrolledAt.UTC(),
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course, lessons []course.Lesson) (course.Course, error) {
	c.ID = newID(c.ID)

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return course.Course{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES (:id, :teacher_id, :provider_id, :title, :description, :total_hours, :hours_per_lesson, :status, :created_at, :updated_at)`,
		courseRow{
			ID:             c.ID,
			TeacherID:      c.TeacherID,
			ProviderID:     null.NewString(c.ProviderID, c.ProviderID != ""),
			Title:          c.Title,
			Description:    c.Description,
			TotalHours:     c.TotalHours,
			HoursPerLesson: c.HoursPerLesson,
			Status:         c.Status,
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
		},
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}

	for _, l := range lessons {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO lessons (`+lessonColumns+`)
			VALUES (:id, :course_id, :title, :description, :order_index, :duration_hours, :content, :status, :created_at, :updated_at)`,
			lessonRow{
				ID:            newID(l.ID),
				CourseID:      c.ID,
				Title:         l.Title,
				Description:   l.Description,
				OrderIndex:    l.OrderIndex,
				DurationHours: l.DurationHours,
				Content:       l.Content,
				Status:        l.Status,
				CreatedAt:     l.CreatedAt,
				UpdatedAt:     l.UpdatedAt,
			},
		)
		if err != nil {
			return course.Course{}, errors.Wrap(err, "inserting lesson")
		}
	}
	if err = tx.Commit(); err != nil {
		return course.Course{}, err
	}
	return repo.GetCourseByID(ctx, c.ID)
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id); err != nil {
		return course.Course{}, notFound(err, course.ErrNotFound)
	}
	c := row.toCourse()

	var lessonRows []lessonRow
	err := repo.db.SelectContext(ctx, &lessonRows, `SELECT `+lessonColumns+` FROM lessons WHERE course_id = $1 ORDER BY order_index`, id)
	if err != nil {
		return course.Course{}, err
	}
	c.Lessons = make([]course.Lesson, 0, len(lessonRows))
	ids := make([]string, 0, len(lessonRows))
	for _, lr := range lessonRows {
		c.Lessons = append(c.Lessons, lr.toLesson())
		ids = append(ids, lr.ID)
	}

	materials, err := repo.materialsOf(ctx, ids...)
	if err != nil {
		return course.Course{}, err
	}
	for i := range c.Lessons {
		if ms, ok := materials[c.Lessons[i].ID]; ok {
			c.Lessons[i].Materials = ms
		}
	}
	return c, nil
}

// materialsOf returns the materials of the lessons, by lesson ID, oldest first.
func (repo *courseRepository) materialsOf(ctx context.Context, lessonIDs ...string) (map[string][]course.Material, error) {
	materials := make(map[string][]course.Material, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return materials, nil
	}

	query, args, err := sqlx.In(`SELECT `+materialColumns+` FROM lesson_materials WHERE lesson_id IN (?) ORDER BY created_at, id`, lessonIDs)
	if err != nil {
		return nil, err
	}
	var rows []materialRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		materials[row.LessonID] = append(materials[row.LessonID], row.toMaterial())
	}
	return materials, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	orderBy := core.OrderByClause(core.CleanOrderings(ordering, course.OrderingFields), "created_at DESC")

	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT `+courseColumns+` FROM courses
		WHERE ($1 = '' OR teacher_id::text = $1) AND ($2 = '' OR status = $2)`+orderBy,
		filter.TeacherID, filter.Status,
	)
	if err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourseStatus(ctx context.Context, id, status string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE courses SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	return checkAffected(res, err, course.ErrNotFound)
}

func (repo *courseRepository) GetLessonByID(ctx context.Context, id string) (course.Lesson, error) {
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id); err != nil {
		return course.Lesson{}, notFound(err, course.ErrLessonNotFound)
	}
	l := row.toLesson()
	materials, err := repo.materialsOf(ctx, id)
	if err != nil {
		return course.Lesson{}, err
	}
	if ms, ok := materials[id]; ok {
		l.Materials = ms
	}
	return l, nil
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, l course.Lesson) (course.Lesson, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE lessons SET title = $2, description = $3, updated_at = $4 WHERE id = $1`,
		l.ID, l.Title, l.Description, l.UpdatedAt,
	)
	if err = checkAffected(res, err, course.ErrLessonNotFound); err != nil {
		return course.Lesson{}, err
	}
	return repo.GetLessonByID(ctx, l.ID)
}

func (repo *courseRepository) UpdateLessonContent(ctx context.Context, id, content, status string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE lessons SET content = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, content, status, time.Now().UTC(),
	)
	return checkAffected(res, err, course.ErrLessonNotFound)
}

func (repo *courseRepository) UpdateLessonStatus(ctx context.Context, id, status string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE lessons SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	return checkAffected(res, err, course.ErrLessonNotFound)
}

func (repo *courseRepository) CreateMaterial(ctx context.Context, m course.Material) (course.Material, error) {
	m.ID = newID(m.ID)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO lesson_materials (`+materialColumns+`)
		VALUES (:id, :lesson_id, :file_name, :file_type, :file_url, :storage_key, :size, :extracted_text, :created_at)`,
		materialRow{
			ID:            m.ID,
			LessonID:      m.LessonID,
			FileName:      m.FileName,
			FileType:      m.FileType,
			FileURL:       m.FileURL,
			StorageKey:    m.StorageKey,
			Size:          m.Size,
			ExtractedText: m.ExtractedText,
			CreatedAt:     m.CreatedAt,
		},
	)
	if err != nil {
		return course.Material{}, err
	}
	return m, nil
}

func (repo *courseRepository) GetMaterialByID(ctx context.Context, id string) (course.Material, error) {
	var row materialRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+materialColumns+` FROM lesson_materials WHERE id = $1`, id); err != nil {
		return course.Material{}, notFound(err, course.ErrMaterialNotFound)
	}
	return row.toMaterial(), nil
}

func (repo *courseRepository) DeleteMaterial(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM lesson_materials WHERE id = $1`, id)
	return checkAffected(res, err, course.ErrMaterialNotFound)
}

func (repo *courseRepository) CountMaterials(ctx context.Context, lessonID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM lesson_materials WHERE lesson_id = $1`, lessonID)
	return count, err
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, e course.Enrollment) (course.Enrollment, error) {
	e.ID = newID(e.ID)
	e.Course = nil
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO enrollments (`+enrollmentColumns+`)
		VALUES (:id, :student_id, :course_id, :progress_percent, :enrolled_at)`,
		enrollmentRow{
			ID:              e.ID,
			StudentID:       e.StudentID,
			CourseID:        e.CourseID,
			ProgressPercent: e.ProgressPercent,
			EnrolledAt:      e.EnrolledAt,
		},
	)
	if isUniqueViolation(err) {
		return course.Enrollment{}, course.ErrAlreadyEnrolled
	}
	if err != nil {
		return course.Enrollment{}, err
	}
	return e, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, studentID, courseID string) (course.Enrollment, error) {
	var row enrollmentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 AND course_id = $2`,
		studentID, courseID,
	)
	if err != nil {
		return course.Enrollment{}, notFound(err, course.ErrNotEnrolled)
	}
	return row.toEnrollment(), nil
}

// QueryEnrollments returns the student's enrollments with their course (without lessons), latest first.
func (repo *courseRepository) QueryEnrollments(ctx context.Context, studentID string) ([]course.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 ORDER BY enrolled_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	enrollments := make([]course.Enrollment, 0, len(rows))
	if len(rows) == 0 {
		return enrollments, nil
	}

	courseIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		courseIDs = append(courseIDs, row.CourseID)
	}
	query, args, err := sqlx.In(`SELECT `+courseColumns+` FROM courses WHERE id IN (?)`, courseIDs)
	if err != nil {
		return nil, err
	}
	var courseRows []courseRow
	if err = repo.db.SelectContext(ctx, &courseRows, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	courses := make(map[string]course.Course, len(courseRows))
	for _, cr := range courseRows {
		courses[cr.ID] = cr.toCourse()
	}

	for _, row := range rows {
		e := row.toEnrollment()
		if c, ok := courses[e.CourseID]; ok {
			e.Course = &c
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, nil
}

func (repo *courseRepository) UpdateEnrollmentProgress(ctx context.Context, id string, percent int) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE enrollments SET progress_percent = $2 WHERE id = $1`, id, percent)
	return checkAffected(res, err, course.ErrNotEnrolled)
}
