package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/user"
)

type batchView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	ActionCardIDs []string `json:"actionCardIds"`
}

func batchViews(batches []actioncard.Batch) []batchView {
	views := make([]batchView, 0, len(batches))
	for _, b := range batches {
		views = append(views, batchView{ID: b.ID, Name: b.Name, Type: b.Type, ActionCardIDs: b.ActionCardIDs})
	}
	return views
}

type actionCardApi struct {
	svc     actioncard.Service
	userSvc user.Service
}

func registerActionCardAPI(g *echo.Group, jwt []echo.MiddlewareFunc, deps ServerDeps) {
	api := actionCardApi{svc: deps.ActionCardSvc, userSvc: deps.UserSvc}

	ag := g.Group("/action_cards", jwt...)
	ag.GET("", api.query, accessMiddleware(api.userSvc, user.RoleCoach))
}

func (api *actionCardApi) query(ctx echo.Context) error {
	cards, err := api.svc.QueryCards(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying action cards")
	}
	return ctx.JSON(http.StatusOK, cards)
}
