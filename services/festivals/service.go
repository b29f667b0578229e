// Package festivals is the festival budget and expense tracking service.
package festivals

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/reform.v1"
)

type Festival struct {
	FestivalID  string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalBudget int64     `json:"total_budget"`
	CreatedAt   time.Time `json:"created_at"`
}

type Expense struct {
	ExpenseID  string    `json:"id"`
	FestivalID string    `json:"festival_id"`
	Name       string    `json:"name"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type Service struct {
	db        *reform.DB
	l         *zap.Logger
	currentID func(c echo.Context) string
}

// NewService builds the festival CRUD service. currentID resolves the
// acting user for expense attribution.
func NewService(db *reform.DB, currentID func(c echo.Context) string) *Service {
	return &Service{
		db:        db,
		l:         zap.L().Named("festivals"),
		currentID: currentID,
	}
}

func (s *Service) Routes(g *echo.Group, authenticate, requireApproved, requireAdmin echo.MiddlewareFunc) {
	g.POST("/festivals", s.createFestivalHandler, authenticate, requireAdmin)
	g.GET("/festivals", s.listFestivalsHandler, authenticate, requireApproved)
	g.GET("/festivals/:id", s.getFestivalHandler, authenticate, requireApproved)
	g.DELETE("/festivals/:id", s.deleteFestivalHandler, authenticate, requireAdmin)
	g.POST("/expenses", s.createExpenseHandler, authenticate, requireAdmin)
	g.GET("/festivals/:id/expenses", s.listExpensesHandler, authenticate, requireApproved)
	g.DELETE("/expenses/:id", s.deleteExpenseHandler, authenticate, requireAdmin)
}

type festivalCreate struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalBudget int64     `json:"total_budget"`
}

func (s *Service) createFestivalHandler(c echo.Context) error {
	var req festivalCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Festival name is required")
	}

	f := Festival{
		FestivalID:  uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TotalBudget: req.TotalBudget,
		CreatedAt:   time.Now(),
	}
	_, err := s.db.Exec(
		`INSERT INTO portal.festivals (festival_id, name, description, start_date, end_date, total_budget, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.FestivalID, f.Name, f.Description, f.StartDate, f.EndDate, f.TotalBudget, f.CreatedAt,
	)
	if err != nil {
		s.l.Error("Failed create festival.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, f)
}

func (s *Service) scanFestivals(rows *sql.Rows) ([]Festival, error) {
	defer rows.Close()
	var out []Festival
	for rows.Next() {
		var f Festival
		err := rows.Scan(&f.FestivalID, &f.Name, &f.Description, &f.StartDate, &f.EndDate, &f.TotalBudget, &f.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "Failed scan festival row.")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Service) listFestivalsHandler(c echo.Context) error {
	rows, err := s.db.Query(
		`SELECT festival_id, name, description, start_date, end_date, total_budget, created_at
		FROM portal.festivals ORDER BY start_date DESC`,
	)
	if err != nil {
		s.l.Error("Failed list festivals.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	out, err := s.scanFestivals(rows)
	if err != nil {
		s.l.Error("Failed read festivals.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if out == nil {
		out = []Festival{}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Service) getFestivalHandler(c echo.Context) error {
	var f Festival
	err := s.db.QueryRow(
		`SELECT festival_id, name, description, start_date, end_date, total_budget, created_at
		FROM portal.festivals WHERE festival_id = $1`,
		c.Param("id"),
	).Scan(&f.FestivalID, &f.Name, &f.Description, &f.StartDate, &f.EndDate, &f.TotalBudget, &f.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Festival not found")
		}
		s.l.Error("Failed get festival.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, f)
}

func (s *Service) deleteFestivalHandler(c echo.Context) error {
	id := c.Param("id")

	// the festival and its expenses go together or not at all
	var deleted bool
	err := s.db.InTransaction(func(tx *reform.TX) error {
		if _, err := tx.Exec(`DELETE FROM portal.expenses WHERE festival_id = $1`, id); err != nil {
			return errors.Wrap(err, "Failed delete festival expenses.")
		}
		res, err := tx.Exec(`DELETE FROM portal.festivals WHERE festival_id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "Failed delete festival.")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "Failed get affected rows.")
		}
		deleted = n == 1
		return nil
	})
	if err != nil {
		s.l.Error("Failed delete festival.", zap.String("festival_id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "Festival not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Festival deleted successfully"})
}

type expenseCreate struct {
	FestivalID string    `json:"festival_id"`
	Name       string    `json:"name"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
}

func (s *Service) createExpenseHandler(c echo.Context) error {
	var req expenseCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.FestivalID == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Festival and name are required")
	}

	e := Expense{
		ExpenseID:  uuid.New().String(),
		FestivalID: req.FestivalID,
		Name:       req.Name,
		Amount:     req.Amount,
		Date:       req.Date,
		CreatedBy:  s.currentID(c),
		CreatedAt:  time.Now(),
	}
	_, err := s.db.Exec(
		`INSERT INTO portal.expenses (expense_id, festival_id, name, amount, date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ExpenseID, e.FestivalID, e.Name, e.Amount, e.Date, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		s.l.Error("Failed create expense.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Service) listExpensesHandler(c echo.Context) error {
	rows, err := s.db.Query(
		`SELECT expense_id, festival_id, name, amount, date, created_by, created_at
		FROM portal.expenses WHERE festival_id = $1 ORDER BY date`,
		c.Param("id"),
	)
	if err != nil {
		s.l.Error("Failed list expenses.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	defer rows.Close()
	out := []Expense{}
	for rows.Next() {
		var e Expense
		err := rows.Scan(&e.ExpenseID, &e.FestivalID, &e.Name, &e.Amount, &e.Date, &e.CreatedBy, &e.CreatedAt)
		if err != nil {
			s.l.Error("Failed scan expense.", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
		}
		out = append(out, e)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Service) deleteExpenseHandler(c echo.Context) error {
	res, err := s.db.Exec(`DELETE FROM portal.expenses WHERE expense_id = $1`, c.Param("id"))
	if err != nil {
		s.l.Error("Failed delete expense.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Expense not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}
