package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core/generation"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/user"
)

type providerApi struct {
	svc       *provider.Service
	usrSvc    *user.Service
	assistant *generation.Assistant
	validate  *validator.Validate
}

func registerProviderAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := providerApi{
		svc:       deps.ProviderSvc,
		usrSvc:    deps.UserSvc,
		assistant: deps.Assistant,
		validate:  deps.Validate,
	}

	pg := g.Group("/providers", jwt, teacherMiddleware(deps.UserSvc))
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.GET("/active", api.queryActive)
	pg.POST("/test", api.test)
	pg.PATCH("/:id", api.update)
	pg.DELETE("/:id", api.destroy)
}

// ProviderResponse is a Provider with its API key masked.
type ProviderResponse struct {
	provider.Provider
	APIKey string `json:"api_key"`
}

func newProviderResponse(p provider.Provider) ProviderResponse {
	return ProviderResponse{Provider: p, APIKey: p.MaskedKey()}
}

func newProviderResponses(providers []provider.Provider) []ProviderResponse {
	res := make([]ProviderResponse, 0, len(providers))
	for _, p := range providers {
		res = append(res, newProviderResponse(p))
	}
	return res
}

// Handlers

func (api *providerApi) create(ctx echo.Context) error {
	var data provider.NewProvider
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProvider")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	p, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating provider")
	}
	return ctx.JSON(http.StatusCreated, newProviderResponse(p))
}

func (api *providerApi) query(ctx echo.Context) error {
	return api.list(ctx, false)
}

func (api *providerApi) queryActive(ctx echo.Context) error {
	return api.list(ctx, true)
}

func (api *providerApi) list(ctx echo.Context, activeOnly bool) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	providers, err := api.svc.Query(ctx.Request().Context(), usr.ID, activeOnly)
	if err != nil {
		return errors.Wrap(err, "querying providers")
	}
	return ctx.JSON(http.StatusOK, newProviderResponses(providers))
}

func (api *providerApi) update(ctx echo.Context) error {
	var data provider.UpdateProvider
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProvider")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	p, err := api.svc.SetActive(ctx.Request().Context(), ctx.Param("id"), usr.ID, *data.IsActive)
	if err != nil {
		return errors.Wrap(err, "updating provider")
	}
	return ctx.JSON(http.StatusOK, newProviderResponse(p))
}

func (api *providerApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), usr.ID); err != nil {
		return errors.Wrap(err, "deleting provider")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *providerApi) test(ctx echo.Context) error {
	var data provider.TestRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reply, err := api.assistant.TestProvider(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "testing provider")
	}
	return ctx.JSON(http.StatusOK, TestProviderResponse{Success: true, Message: reply})
}

type TestProviderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
