package echoapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/user"
)

type courseApi struct {
	svc           *course.Service
	providerSvc   *provider.Service
	usrSvc        *user.Service
	validate      *validator.Validate
	maxUploadSize int64
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:           deps.CourseSvc,
		providerSvc:   deps.ProviderSvc,
		usrSvc:        deps.UserSvc,
		validate:      deps.Validate,
		maxUploadSize: deps.Conf.Files.MaxUploadSize,
	}
	teacher := teacherMiddleware(deps.UserSvc)

	cg := g.Group("/courses", jwt, teacher)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.POST("/:id/activate", api.activate)
	cg.POST("/:id/archive", api.archive)

	lg := g.Group("/lessons", jwt, teacher)
	lg.PUT("/:id", api.updateLesson)
	lg.POST("/:id/materials", api.uploadMaterial)

	mg := g.Group("/materials", jwt, teacher)
	mg.DELETE("/:id", api.removeMaterial)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if data.ProviderID != "" {
		if _, err = api.providerSvc.GetOwned(ctx.Request().Context(), data.ProviderID, usr.ID); err != nil {
			if errors.Cause(err) == provider.ErrNotFound {
				return core.NewFieldValidationError("provider_id", "provider not found")
			}
			return errors.Wrap(err, "getting course provider")
		}
	}

	c, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	filter := course.QueryFilter{TeacherID: usr.ID, Status: ctx.QueryParam("status")}
	courses, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.GetOwned(ctx.Request().Context(), ctx.Param("id"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) activate(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Activate(ctx.Request().Context(), ctx.Param("id"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "activating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) archive(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Archive(ctx.Request().Context(), ctx.Param("id"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "archiving course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) updateLesson(ctx echo.Context) error {
	var data course.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	l, err := api.svc.UpdateLesson(ctx.Request().Context(), ctx.Param("id"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *courseApi) uploadMaterial(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewFieldValidationError("file", "this field is required")
	}
	if api.maxUploadSize > 0 && fh.Size > api.maxUploadSize {
		return core.NewFieldValidationError("file", fmt.Sprintf("file must not exceed %d bytes", api.maxUploadSize))
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	up := course.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        int64(len(content)),
		Content:     content,
	}
	m, err := api.svc.AddMaterial(ctx.Request().Context(), ctx.Param("id"), usr.ID, up)
	if err != nil {
		return errors.Wrap(err, "adding material")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *courseApi) removeMaterial(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.RemoveMaterial(ctx.Request().Context(), ctx.Param("id"), usr.ID); err != nil {
		return errors.Wrap(err, "removing material")
	}
	return ctx.NoContent(http.StatusNoContent)
}
