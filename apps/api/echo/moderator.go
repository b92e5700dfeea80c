package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core/user"
)

type moderatorApi struct {
	svc      user.Service
	validate *validator.Validate
}

func registerModeratorAPI(g *echo.Group, jwt []echo.MiddlewareFunc, deps ServerDeps) {
	api := moderatorApi{svc: deps.UserSvc, validate: deps.Validate}

	mg := g.Group("/moderators", jwt...)
	mg.GET("", api.query, accessMiddleware(api.svc, user.RoleModerator))
	mg.POST("", api.create, accessMiddleware(api.svc, user.RoleAdmin))
	mg.DELETE("/:id", api.destroy, accessMiddleware(api.svc, user.RoleAdmin))
}

func (api *moderatorApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, userOrderingFields...)

	moderators, err := api.svc.QueryModerators(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying moderators")
	}
	views := make([]userView, 0, len(moderators))
	for _, m := range moderators {
		views = append(views, newUserView(m))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *moderatorApi) create(ctx echo.Context) error {
	var data user.NewModerator
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	moderator, err := api.svc.CreateModerator(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating moderator")
	}
	return ctx.JSON(http.StatusOK, newUserView(moderator))
}

func (api *moderatorApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteModerator(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting moderator")
	}
	return ctx.NoContent(http.StatusNoContent)
}
