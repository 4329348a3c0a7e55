package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/generation"
	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
)

type learningApi struct {
	logger    core.Logger
	courseSvc *course.Service
	quizSvc   *quiz.Service
	notifySvc *notify.Service
	usrSvc    *user.Service
	assistant *generation.Assistant
	validate  *validator.Validate
}

func registerLearningAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := learningApi{
		logger:    deps.Logger,
		courseSvc: deps.CourseSvc,
		quizSvc:   deps.QuizSvc,
		notifySvc: deps.NotifySvc,
		usrSvc:    deps.UserSvc,
		assistant: deps.Assistant,
		validate:  deps.Validate,
	}
	authed := userMiddleware(deps.UserSvc)
	student := studentMiddleware(deps.UserSvc)

	g.GET("/catalog", api.catalog, jwt, authed)
	g.GET("/catalog/:id", api.catalogCourse, jwt, authed)
	g.POST("/courses/:id/enroll", api.enroll, jwt, student)
	g.GET("/enrollments", api.enrollments, jwt, student)

	g.GET("/lessons/:id", api.lesson, jwt, authed)
	g.GET("/lessons/:id/quiz", api.lessonQuiz, jwt, authed)
	g.POST("/lessons/:id/simplify", api.simplify, jwt, student)
	g.POST("/quizzes/:id/submit", api.submitQuiz, jwt, student)
}

type SimplifyResponse struct {
	LessonID          string `json:"lesson_id"`
	SimplifiedContent string `json:"simplified_content"`
}

// Handlers

func (api *learningApi) catalog(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	courses, err := api.courseSvc.Query(ctx.Request().Context(), course.QueryFilter{Status: course.StatusActive}, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying active courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

// catalogCourse shows an active course and its lesson plan, without the lesson contents.
func (api *learningApi) catalogCourse(ctx echo.Context) error {
	c, err := api.courseSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	if c.Status != course.StatusActive {
		return course.ErrNotFound
	}
	for i := range c.Lessons {
		c.Lessons[i].Content = ""
		c.Lessons[i].Materials = nil
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *learningApi) enroll(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	e, err := api.courseSvc.Enroll(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}

	if e.Course != nil {
		if _, err = api.notifySvc.NotifyEnrollment(ctx.Request().Context(), e.Course.TeacherID, usr.DisplayName(), e.Course.Title); err != nil {
			api.logger.Error("notifying enrollment", err, usr, map[string]interface{}{"course_id": e.CourseID})
		}
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *learningApi) enrollments(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enrollments, err := api.courseSvc.Enrollments(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

// lesson returns the lesson to its course teacher, or to an enrolled student.
func (api *learningApi) lesson(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	l, err := api.visibleLesson(ctx, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l)
}

// lessonQuiz shows the full quiz to the teacher; students get it without the answers.
func (api *learningApi) lessonQuiz(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	l, err := api.visibleLesson(ctx, usr)
	if err != nil {
		return err
	}
	q, err := api.quizSvc.GetByLesson(ctx.Request().Context(), l.ID)
	if err != nil {
		return errors.Wrap(err, "getting lesson quiz")
	}

	if usr.IsTeacher() || usr.IsAdmin() {
		return ctx.JSON(http.StatusOK, q)
	}
	return ctx.JSON(http.StatusOK, q.Public())
}

func (api *learningApi) visibleLesson(ctx echo.Context, usr user.User) (course.Lesson, error) {
	rctx := ctx.Request().Context()
	id := ctx.Param("id")

	switch {
	case usr.IsAdmin():
		l, err := api.courseSvc.GetLesson(rctx, id)
		return l, errors.Wrap(err, "getting lesson")
	case usr.IsTeacher():
		l, _, err := api.courseSvc.GetOwnedLesson(rctx, id, usr.ID)
		return l, errors.Wrap(err, "getting owned lesson")
	default:
		l, _, err := api.courseSvc.GetStudentLesson(rctx, id, usr.ID)
		return l, errors.Wrap(err, "getting student lesson")
	}
}

func (api *learningApi) simplify(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	content, err := api.assistant.Simplify(ctx.Request().Context(), ctx.Param("id"), usr)
	if err != nil {
		return errors.Wrap(err, "simplifying lesson")
	}
	return ctx.JSON(http.StatusOK, SimplifyResponse{LessonID: ctx.Param("id"), SimplifiedContent: content})
}

func (api *learningApi) submitQuiz(ctx echo.Context) error {
	var data quiz.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.quizSvc.Submit(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusCreated, res)
}
