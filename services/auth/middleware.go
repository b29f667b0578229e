package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo"

	"github.com/shrujansacharya/Team-Connect-App/services/members"
)

const userContextKey = "portal.current_user"

// AdminID is the pseudo user id carried by admin tokens; the admin is not
// a row in the user registry.
const AdminID = "admin"

func adminUser() *members.User {
	return &members.User{
		UserID:     AdminID,
		FullName:   "Admin",
		Role:       members.RoleAdmin,
		IsApproved: true,
	}
}

// CurrentUser returns the authenticated user set by Authenticate, or nil.
func CurrentUser(c echo.Context) *members.User {
	u, _ := c.Get(userContextKey).(*members.User)
	return u
}

// Guard builds the route middlewares over the token parser and the user
// registry.
type Guard struct {
	tokens *Tokens
	users  members.UserStore
}

func NewGuard(tokens *Tokens, users members.UserStore) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate requires a valid bearer token and resolves the user.
func (g *Guard) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
		}
		claims, err := g.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
		}

		if claims.Role == members.RoleAdmin {
			c.Set(userContextKey, adminUser())
			return next(c)
		}

		u, err := g.users.FindByID(c.Request().Context(), claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		c.Set(userContextKey, u)
		return next(c)
	}
}

// RequireApproved additionally rejects members still pending approval.
func (g *Guard) RequireApproved(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := CurrentUser(c)
		if u == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
		}
		if u.Role != members.RoleAdmin && !u.IsApproved {
			return echo.NewHTTPError(http.StatusForbidden, "Your account is pending approval")
		}
		return next(c)
	}
}

// RequireAdmin rejects everything but admin tokens.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := CurrentUser(c)
		if u == nil || u.Role != members.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}
