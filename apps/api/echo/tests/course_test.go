package tests

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/tests"
)

func Test_courseApi_create(t *testing.T) {
	e := setup(t)
	teacher := e.teacher(t, "teacher")
	other := e.teacher(t, "other")
	student := e.student(t, "student")
	foreign := testutil.CreateProvider(t, e.provRepo, other.ID, provider.VendorOpenAI, "gpt-4o", true)
	own := testutil.CreateProvider(t, e.provRepo, teacher.ID, provider.VendorOpenAI, "gpt-4o", true)

	tests := []httpTest{
		{name: "Teacher required", token: e.token(t, student), body: []byte(`{}`), wantCode: http.StatusForbidden},
		{
			name: "lesson longer than course", body: []byte(`{"title": "Algebra", "total_hours": 2, "hours_per_lesson": 3}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"hours_per_lesson": "hours per lesson cannot exceed the total hours"}`),
		},
		{
			name: "foreign provider", wantCode: http.StatusBadRequest, wantData: []byte(`{"provider_id": "provider not found"}`),
			body: []byte(fmt.Sprintf(`{"title": "Algebra", "total_hours": 2, "hours_per_lesson": 1, "provider_id": %q}`, foreign.ID)),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/courses"
		if tt.token == "" {
			tt.token = e.token(t, teacher)
		}

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, e.serve(tt))
		})
	}

	t.Run("lessons are planned", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: "/v1/courses", token: e.token(t, teacher),
			body: []byte(fmt.Sprintf(`{"title": " Algebra ", "total_hours": 10, "hours_per_lesson": 4, "provider_id": %q}`, own.ID)),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var c course.Course
		unmarshal(t, rec, &c)
		assert.Equal(t, "Algebra", c.Title)
		assert.Equal(t, course.StatusDraft, c.Status)
		assert.Equal(t, own.ID, c.ProviderID)
		require.Len(t, c.Lessons, 3)
		for i, wantHours := range []int{4, 4, 2} {
			assert.Equal(t, i+1, c.Lessons[i].OrderIndex)
			assert.Equal(t, wantHours, c.Lessons[i].DurationHours)
			assert.Equal(t, course.LessonPending, c.Lessons[i].Status)
		}
	})
}

func Test_courseApi_queryAndStatus(t *testing.T) {
	e := setup(t)
	teacher := e.teacher(t, "teacher")
	other := e.teacher(t, "other")
	token := e.token(t, teacher)

	algebra := testutil.CreateCourse(t, e.courseRepo, teacher.ID, "", "Algebra", course.StatusDraft, 2)
	biology := testutil.CreateCourse(t, e.courseRepo, teacher.ID, "", "Biology", course.StatusActive, 1)
	foreign := testutil.CreateCourse(t, e.courseRepo, other.ID, "", "Chemistry", course.StatusActive, 1)
	generating := testutil.CreateCourse(t, e.courseRepo, teacher.ID, "", "Drawing", course.StatusGenerating, 1)

	titles := func(t *testing.T, path string) []string {
		rec := e.serve(httpTest{path: path, token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var courses []course.Course
		unmarshal(t, rec, &courses)
		res := make([]string, 0, len(courses))
		for _, c := range courses {
			res = append(res, c.Title)
		}
		return res
	}

	t.Run("own courses by title", func(t *testing.T) {
		assert.Equal(t, []string{"Algebra", "Biology", "Drawing"}, titles(t, "/v1/courses?ordering=title"))
		assert.Equal(t, []string{"Drawing", "Biology", "Algebra"}, titles(t, "/v1/courses?ordering=-title"))
	})

	t.Run("filter by status", func(t *testing.T) {
		assert.Equal(t, []string{"Biology"}, titles(t, "/v1/courses?status=active"))
	})

	tests := []httpTest{
		{name: "retrieve foreign", path: "/v1/courses/" + foreign.ID, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()})},
		{name: "activate foreign", method: http.MethodPost, path: "/v1/courses/" + foreign.ID + "/activate", wantCode: http.StatusNotFound},
		{name: "archive left generating", method: http.MethodPost, path: "/v1/courses/" + generating.ID + "/archive", wantCode: http.StatusOK},
		{name: "retrieve own", path: "/v1/courses/" + algebra.ID, wantCode: http.StatusOK, wantData: marchallObj(t, algebra)},
	}
	for _, tt := range tests {
		tt.token = token

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, e.serve(tt))
		})
	}

	t.Run("activate & archive", func(t *testing.T) {
		rec := e.serve(httpTest{method: http.MethodPost, path: "/v1/courses/" + algebra.ID + "/activate", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		c, err := e.courseRepo.GetCourseByID(ctxBg, algebra.ID)
		require.NoError(t, err)
		assert.Equal(t, course.StatusActive, c.Status)

		rec = e.serve(httpTest{method: http.MethodPost, path: "/v1/courses/" + biology.ID + "/archive", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		c, err = e.courseRepo.GetCourseByID(ctxBg, biology.ID)
		require.NoError(t, err)
		assert.Equal(t, course.StatusArchived, c.Status)
	})
}

func Test_courseApi_lessonsAndMaterials(t *testing.T) {
	e := setup(t, func(conf *core.Config) { conf.Files.MaxUploadSize = 64 })
	teacher := e.teacher(t, "teacher")
	other := e.teacher(t, "other")
	token := e.token(t, teacher)

	c := testutil.CreateCourse(t, e.courseRepo, teacher.ID, "", "Algebra", course.StatusDraft, 2)
	lesson := c.Lessons[0]

	t.Run("update lesson", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPut, path: "/v1/lessons/" + lesson.ID, token: token,
			body: []byte(`{"title": "Linear equations", "description": "ax + b = 0"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var l course.Lesson
		unmarshal(t, rec, &l)
		assert.Equal(t, "Linear equations", l.Title)
		assert.Equal(t, "ax + b = 0", l.Description)
	})

	t.Run("update foreign lesson", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPut, path: "/v1/lessons/" + lesson.ID, token: e.token(t, other),
			body: []byte(`{"title": "Mine now"}`),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blank title", func(t *testing.T) {
		rec := e.serve(httpTest{method: http.MethodPut, path: "/v1/lessons/" + lesson.ID, token: token, body: []byte(`{"title": "   "}`)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported file type", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/lessons/"+lesson.ID+"/materials", token, "virus.exe", []byte("MZ"))
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"file": "unsupported file type"}`)}, rec)
	})

	t.Run("file too large", func(t *testing.T) {
		content := make([]byte, e.conf.Files.MaxUploadSize+1)
		req, rec := newUploadRequest(t, "/v1/lessons/"+lesson.ID+"/materials", token, "big.txt", content)
		e.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	var m course.Material
	t.Run("upload & remove material", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/lessons/"+lesson.ID+"/materials", token, "notes.md", []byte("  # Equations\nSolve for x.  "))
		e.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		unmarshal(t, rec, &m)
		assert.Equal(t, "md", m.FileType)
		assert.Equal(t, "# Equations\nSolve for x.", m.ExtractedText)

		l, err := e.courseRepo.GetLessonByID(ctxBg, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, course.LessonMaterialsUploaded, l.Status)
		require.Len(t, l.Materials, 1)

		stored := filepath.Join(e.filesDir, filepath.FromSlash(l.Materials[0].StorageKey))
		_, err = os.Stat(stored)
		require.NoError(t, err)

		rec = e.serve(httpTest{method: http.MethodDelete, path: "/v1/materials/" + m.ID, token: e.token(t, other)})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = e.serve(httpTest{method: http.MethodDelete, path: "/v1/materials/" + m.ID, token: token})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		l, err = e.courseRepo.GetLessonByID(ctxBg, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, course.LessonPending, l.Status)
		assert.Empty(t, l.Materials)
		_, err = os.Stat(stored)
		assert.True(t, os.IsNotExist(err))
	})
}
