package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
)

// accessMiddleware only lets through users whose highest role ranks at least as high as level.
func accessMiddleware(svc user.Service, level string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if !usr.HasAccess(level) {
				return core.ErrPermissionDenied
			}
			return next(ctx)
		}
	}
}

// selfOrAdminMiddleware only lets through admins and the user identified by the `id` path param.
func selfOrAdminMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if !(usr.IsAdmin() || usr.ID == ctx.Param("id")) {
				return core.ErrPermissionDenied
			}
			return next(ctx)
		}
	}
}

// revocationMiddleware rejects the tokens revoked on logout.
func revocationMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			revoked, err := svc.IsTokenRevoked(ctx.Request().Context(), claims.Id)
			if err != nil {
				return errors.Wrap(err, "checking token revocation")
			}
			if revoked {
				return core.ErrRevokedToken
			}
			return next(ctx)
		}
	}
}

// newRateLimitMiddleware limits the requests per client IP and route.
func newRateLimitMiddleware(conf *core.Config) echo.MiddlewareFunc {
	lmt := limiter.New(memory.NewStore(), limiter.Rate{
		Period: conf.Server.RateLimitPeriod,
		Limit:  conf.Server.RateLimit,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			key := ctx.RealIP() + ":" + ctx.Path()
			lctx, err := lmt.Get(ctx.Request().Context(), key)
			if err != nil {
				return errors.Wrap(err, "getting rate limit")
			}

			h := ctx.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))
			if lctx.Reached {
				return core.ErrTooManyRequests
			}
			return next(ctx)
		}
	}
}
