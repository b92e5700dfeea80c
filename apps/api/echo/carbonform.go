package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/workshop"
)

type carbonFormApi struct {
	svc      workshop.Service
	validate *validator.Validate
}

// registerCarbonFormAPI mounts the public carbon form endpoint. Participants have no account credentials.
func registerCarbonFormAPI(g *echo.Group, deps ServerDeps) {
	api := carbonFormApi{svc: deps.WorkshopSvc, validate: deps.Validate}
	g.POST("/carbon_forms/:workshopId", api.submit)
}

func (api *carbonFormApi) submit(ctx echo.Context) error {
	// unknown workshops answer 404 whatever the body
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("workshopId")); err != nil {
		return errors.Wrap(err, "getting workshop")
	}

	var data carbon.NewFormAnswers
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fa, err := api.svc.SubmitCarbonForm(ctx.Request().Context(), ctx.Param("workshopId"), data)
	if err != nil {
		return errors.Wrap(err, "submitting carbon form")
	}
	return ctx.JSON(http.StatusOK, fa)
}
