package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core/generation"
	"github.com/trezcool/darslik/core/user"
)

type aiApi struct {
	courseGen   *generation.CourseGenerator
	feedbackGen *generation.FeedbackGenerator
	usrSvc      *user.Service
	validate    *validator.Validate
}

func registerAIAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := aiApi{
		courseGen:   deps.CourseGen,
		feedbackGen: deps.FeedbackGen,
		usrSvc:      deps.UserSvc,
		validate:    deps.Validate,
	}

	ag := g.Group("/ai", jwt)
	ag.POST("/generate-course", api.generateCourse, teacherMiddleware(deps.UserSvc))
	ag.POST("/generate-feedback", api.generateFeedback, userMiddleware(deps.UserSvc))
}

type (
	GenerateCourseRequest struct {
		CourseID string `json:"course_id" validate:"required,uuid"`
	}

	GenerateFeedbackRequest struct {
		ResultID string `json:"quiz_result_id" validate:"required,uuid"`
	}

	GenerateCourseResponse struct {
		Success  bool                       `json:"success"`
		CourseID string                     `json:"course_id"`
		Results  []generation.LessonOutcome `json:"results"`
	}
)

// Handlers

// generateCourse runs the whole course generation in the request; it may take minutes.
func (api *aiApi) generateCourse(ctx echo.Context) error {
	var data GenerateCourseRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateCourseRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rep, err := api.courseGen.Generate(ctx.Request().Context(), data.CourseID, &usr)
	if err != nil {
		return errors.Wrap(err, "generating course")
	}
	return ctx.JSON(http.StatusOK, GenerateCourseResponse{Success: true, CourseID: rep.CourseID, Results: rep.Results})
}

func (api *aiApi) generateFeedback(ctx echo.Context) error {
	var data GenerateFeedbackRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateFeedbackRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.feedbackGen.Generate(ctx.Request().Context(), data.ResultID, &usr)
	if err != nil {
		return errors.Wrap(err, "generating feedback")
	}
	return ctx.JSON(http.StatusOK, res)
}
