package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/user"
)

type notifyApi struct {
	svc      *notify.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerNotifyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notifyApi{svc: deps.NotifySvc, usrSvc: deps.UserSvc, validate: deps.Validate}
	authed := userMiddleware(deps.UserSvc)
	student := studentMiddleware(deps.UserSvc)

	g.GET("/notifications", api.notifications, jwt, authed)
	g.POST("/notifications/read", api.markNotificationsRead, jwt, authed)
	g.GET("/recommendations", api.recommendations, jwt, student)
	g.POST("/recommendations/read", api.markRecommendationsRead, jwt, student)
}

func (api *notifyApi) bindMarkRead(ctx echo.Context) (notify.MarkRead, error) {
	var data notify.MarkRead
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to MarkRead")
	}
	if err := api.validate.Struct(data); err != nil {
		return data, err
	}
	return data, nil
}

// Handlers

func (api *notifyApi) notifications(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	notifications, err := api.svc.Notifications(ctx.Request().Context(), usr.ID, unreadOnly(ctx))
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, notifications)
}

func (api *notifyApi) markNotificationsRead(ctx echo.Context) error {
	data, err := api.bindMarkRead(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.MarkNotificationsRead(ctx.Request().Context(), usr.ID, data.IDs...); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "notifications marked as read"})
}

func (api *notifyApi) recommendations(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	recommendations, err := api.svc.Recommendations(ctx.Request().Context(), usr.ID, unreadOnly(ctx))
	if err != nil {
		return errors.Wrap(err, "querying recommendations")
	}
	return ctx.JSON(http.StatusOK, recommendations)
}

func (api *notifyApi) markRecommendationsRead(ctx echo.Context) error {
	data, err := api.bindMarkRead(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.MarkRecommendationsRead(ctx.Request().Context(), usr.ID, data.IDs...); err != nil {
		return errors.Wrap(err, "marking recommendations read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "recommendations marked as read"})
}
