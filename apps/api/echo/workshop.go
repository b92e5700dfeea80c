package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/core/workshop"
)

var workshopOrderingFields = []string{"name", "startAt", "city", "createdAt"}

type workshopView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartAt   time.Time `json:"startAt"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	EventURL  string    `json:"eventUrl"`
	CoachID   string    `json:"coachId"`
	CreatorID string    `json:"creatorId"`
}

func newWorkshopView(w workshop.Workshop) workshopView {
	return workshopView{
		ID:        w.ID,
		Name:      w.Name,
		StartAt:   w.StartAt,
		City:      w.City,
		Address:   w.Address,
		EventURL:  w.EventURL,
		CoachID:   w.CoachID,
		CreatorID: w.CreatorID,
	}
}

type workshopApi struct {
	svc      workshop.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerWorkshopAPI(g *echo.Group, jwt []echo.MiddlewareFunc, deps ServerDeps) {
	api := workshopApi{
		svc:      deps.WorkshopSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	mw := append(jwt[:len(jwt):len(jwt)], accessMiddleware(api.userSvc, user.RoleCoach))
	wg := g.Group("/workshops", mw...)
	wg.GET("", api.query)
	wg.POST("", api.create)
	wg.GET("/:id", api.retrieve)
	wg.PUT("/:id", api.update)
	wg.DELETE("/:id", api.destroy)

	wg.POST("/:id/participants", api.addParticipant)
	wg.DELETE("/:id/participants/:participantId", api.removeParticipant)
	wg.POST("/:id/participants/:participantId/carbon_form", api.sendCarbonForm)

	wg.POST("/:id/rounds/:year/footprints", api.computeFootprints)
}

func (api *workshopApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, workshopOrderingFields...)
	filter := workshop.QueryFilter{CoachID: ctx.QueryParam("coachId")}

	workshops, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying workshops")
	}
	views := make([]workshopView, 0, len(workshops))
	for _, w := range workshops {
		views = append(views, newWorkshopView(w))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *workshopApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data workshop.NewWorkshop
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	w, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating workshop")
	}
	return ctx.JSON(http.StatusOK, newWorkshopView(w))
}

func (api *workshopApi) retrieve(ctx echo.Context) error {
	detail, err := api.svc.GetDetail(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting workshop")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *workshopApi) update(ctx echo.Context) error {
	var data workshop.UpdateWorkshop
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	detail, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating workshop")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *workshopApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting workshop")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *workshopApi) addParticipant(ctx echo.Context) error {
	var data workshop.NewParticipant
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	participant, err := api.svc.AddParticipant(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding participant")
	}
	return ctx.JSON(http.StatusOK, participant)
}

func (api *workshopApi) removeParticipant(ctx echo.Context) error {
	err := api.svc.RemoveParticipant(ctx.Request().Context(), ctx.Param("id"), ctx.Param("participantId"))
	if err != nil {
		return errors.Wrap(err, "removing participant")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *workshopApi) sendCarbonForm(ctx echo.Context) error {
	err := api.svc.SendCarbonForm(ctx.Request().Context(), ctx.Param("id"), ctx.Param("participantId"))
	if err != nil {
		return errors.Wrap(err, "sending carbon form")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *workshopApi) computeFootprints(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return core.ErrEntityNotFound
	}

	round, err := api.svc.ComputeRoundFootprints(ctx.Request().Context(), ctx.Param("id"), year)
	if err != nil {
		return errors.Wrap(err, "computing footprints")
	}
	return ctx.JSON(http.StatusOK, round)
}
