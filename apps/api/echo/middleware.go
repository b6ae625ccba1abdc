package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(RoleAdmin)
}

func studentMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(RoleStudent)
}

func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == role {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// ownerOrAdminMiddleware lets admins through, and students only to their own roll.
// Anything else looks like a missing student.
func ownerOrAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin() || (claims.IsStudent() && claims.Subject == student.NormalizeRoll(ctx.Param("roll"))) {
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

// studentObjectMiddleware puts the Student named by the :roll param in the context.
func studentObjectMiddleware(svc student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := svc.GetByRoll(ctx.Request().Context(), ctx.Param("roll"))
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "getting student")
			}
			ctx.Set(contextObjectKey, s)
			return next(ctx)
		}
	}
}

// markObjectMiddleware puts the Mark named by the :id param in the context.
func markObjectMiddleware(svc mark.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
			if err != nil {
				return errHttpNotFound
			}
			m, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == mark.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "getting mark")
			}
			ctx.Set(contextObjectKey, m)
			return next(ctx)
		}
	}
}
