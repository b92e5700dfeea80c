package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/user"
)

var userOrderingFields = []string{"firstName", "lastName", "email", "city", "createdAt"}

type coachApi struct {
	svc      user.Service
	cardSvc  actioncard.Service
	validate *validator.Validate
}

func registerCoachAPI(g *echo.Group, jwt []echo.MiddlewareFunc, deps ServerDeps) {
	api := coachApi{
		svc:      deps.UserSvc,
		cardSvc:  deps.ActionCardSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/coaches", jwt...)
	cg.GET("", api.query, accessMiddleware(api.svc, user.RoleCoach))
	cg.POST("", api.create, accessMiddleware(api.svc, user.RoleAdmin))
	cg.GET("/:id", api.retrieve, accessMiddleware(api.svc, user.RoleCoach))
	cg.DELETE("/:id", api.destroy, accessMiddleware(api.svc, user.RoleAdmin))

	bg := cg.Group("/:id/action_card_batches", accessMiddleware(api.svc, user.RoleCoach), selfOrAdminMiddleware(api.svc))
	bg.GET("", api.queryBatches)
	bg.PUT("", api.replaceBatches)
}

func (api *coachApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, userOrderingFields...)

	coaches, err := api.svc.QueryCoaches(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying coaches")
	}
	views := make([]coachView, 0, len(coaches))
	for _, c := range coaches {
		views = append(views, newCoachView(c))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *coachApi) create(ctx echo.Context) error {
	var data user.NewCoach
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	coach, err := api.svc.CreateCoach(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating coach")
	}
	return ctx.JSON(http.StatusOK, newCoachView(coach))
}

func (api *coachApi) retrieve(ctx echo.Context) error {
	coach, err := api.svc.GetCoach(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting coach")
	}
	return ctx.JSON(http.StatusOK, newCoachView(coach))
}

func (api *coachApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteCoach(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting coach")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *coachApi) queryBatches(ctx echo.Context) error {
	coach, err := api.svc.GetCoach(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting coach")
	}
	batches, err := api.cardSvc.QueryBatches(ctx.Request().Context(), coach.ID)
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	return ctx.JSON(http.StatusOK, batchViews(batches))
}

func (api *coachApi) replaceBatches(ctx echo.Context) error {
	coach, err := api.svc.GetCoach(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting coach")
	}

	var data []actioncard.NewBatch
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	if err = actioncard.ValidateBatches(api.validate, data); err != nil {
		return err
	}

	batches, err := api.cardSvc.ReplaceCoachBatches(ctx.Request().Context(), coach.ID, data)
	if err != nil {
		return errors.Wrap(err, "replacing batches")
	}
	return ctx.JSON(http.StatusOK, batchViews(batches))
}
