package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darslik/core/user"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// teacherMiddleware lets teachers (and admins) through, with the active context user loaded.
func teacherMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, func(claims Claims) bool { return claims.IsTeacher || claims.IsAdmin })
}

func studentMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, func(claims Claims) bool { return claims.IsStudent })
}

func roleMiddleware(svc *user.Service, allowed func(Claims) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if !allowed(claims) {
				return errHttpForbidden
			}
			usr, err := getContextUser(ctx, svc, claims)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !usr.Active() {
				return errAccountDeactivated
			}
			return next(ctx)
		}
	}
}

// userMiddleware lets any active authenticated user through.
func userMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, func(Claims) bool { return true })
}
