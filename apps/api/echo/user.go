package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		AccessToken string `json:"access_token"`
	}

	ForgottenPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	userView struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Role      string `json:"role"`
	}

	coachView struct {
		userView
		City                 string `json:"city"`
		WorkshopsCount       int    `json:"workshopsCount"`
		AwarenessRaisedCount int    `json:"awarenessRaisedCount"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

func (r *ForgottenPasswordRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

func newUserView(usr user.User) userView {
	return userView{
		ID:        usr.ID,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Email:     usr.Email,
		Role:      usr.MaxRole(),
	}
}

func newCoachView(usr user.User) coachView {
	return coachView{
		userView:             newUserView(usr),
		City:                 usr.City,
		WorkshopsCount:       usr.WorkshopsCount,
		AwarenessRaisedCount: usr.AwarenessRaisedCount,
	}
}

type userApi struct {
	svc      user.Service
	auth     *jwtAuth
	logger   core.Logger
	validate *validator.Validate
}

func registerUserAPI(
	g *echo.Group,
	jwt []echo.MiddlewareFunc,
	rateLimit echo.MiddlewareFunc,
	auth *jwtAuth,
	deps ServerDeps,
) {
	api := userApi{
		svc:      deps.UserSvc,
		auth:     auth,
		logger:   deps.Logger,
		validate: deps.Validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login, rateLimit)
	g.POST("/forgotten_password", api.forgottenPassword, rateLimit)
	g.POST("/reset_password", api.resetPassword, rateLimit)

	// authed endpoints
	g.DELETE("/logout", api.logout, jwt...)
	g.GET("/users/me", api.me, jwt...)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.auth.conf, GetUserClaims(api.auth.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}

func (api *userApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.RevokeToken(ctx.Request().Context(), claims.Id); err != nil {
		return errors.Wrap(err, "revoking token")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	if usr.IsCoach() {
		return ctx.JSON(http.StatusOK, newCoachView(usr))
	}
	return ctx.JSON(http.StatusOK, newUserView(usr))
}

// forgottenPassword answers 204 whether the email is known or not.
func (api *userApi) forgottenPassword(ctx echo.Context) error {
	var data ForgottenPasswordRequest
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.NoContent(http.StatusNoContent)
}
