package members

import (
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/shrujansacharya/Team-Connect-App/ledger"
	"github.com/shrujansacharya/Team-Connect-App/period"
)

type Service struct {
	users    UserStore
	ledger   ledger.Store
	resolver *period.Resolver
	l        *zap.Logger
}

func NewService(users UserStore, ledgerStore ledger.Store, resolver *period.Resolver) *Service {
	return &Service{
		users:    users,
		ledger:   ledgerStore,
		resolver: resolver,
		l:        zap.L().Named("members"),
	}
}

// Routes mounts user administration and the member directory. The guard
// middlewares come from the auth package; admin routes require an admin
// token, the directory any approved member.
func (s *Service) Routes(g *echo.Group, authenticate, requireApproved, requireAdmin echo.MiddlewareFunc) {
	g.GET("/users", s.listUsersHandler, authenticate, requireAdmin)
	g.PUT("/users/:id/approve", s.approveHandler, authenticate, requireAdmin)
	g.DELETE("/users/:id", s.deleteHandler, authenticate, requireAdmin)
	g.GET("/members", s.directoryHandler, authenticate, requireApproved)
}

func (s *Service) listUsersHandler(c echo.Context) error {
	users, err := s.users.List(c.Request().Context())
	if err != nil {
		s.l.Error("Failed list users.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Service) approveHandler(c echo.Context) error {
	id := c.Param("id")
	if err := s.users.Approve(c.Request().Context(), id); err != nil {
		if err == ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		s.l.Error("Failed approve user.", zap.String("user_id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	s.l.Info("User approved.", zap.String("user_id", id))
	return c.JSON(http.StatusOK, map[string]string{"message": "User approved successfully"})
}

func (s *Service) deleteHandler(c echo.Context) error {
	id := c.Param("id")
	if err := s.users.Delete(c.Request().Context(), id); err != nil {
		if err == ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		s.l.Error("Failed delete user.", zap.String("user_id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	s.l.Info("User deleted.", zap.String("user_id", id))
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

type directoryEntry struct {
	*User
	HasPaidCurrentMonth bool `json:"has_paid_current_month"`
}

func (s *Service) directoryHandler(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := s.users.ListApproved(ctx)
	if err != nil {
		s.l.Error("Failed list members.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	recs, err := s.ledger.ListForPeriod(ctx, s.resolver.Current())
	if err != nil {
		s.l.Error("Failed list payments.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	paid := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		paid[rec.MemberID] = struct{}{}
	}

	out := make([]directoryEntry, 0, len(users))
	for _, u := range users {
		_, hasPaid := paid[u.UserID]
		out = append(out, directoryEntry{User: u, HasPaidCurrentMonth: hasPaid})
	}
	return c.JSON(http.StatusOK, out)
}
