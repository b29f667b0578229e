// Package landing serves the public site content: slogans, achievements,
// team members, offered services, and the singleton site configuration.
package landing

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"go.uber.org/zap"
	"gopkg.in/reform.v1"
)

type Slogan struct {
	SloganID  string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type Achievement struct {
	AchievementID string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

type TeamMember struct {
	MemberID string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	PhotoURL string `json:"photo_url"`
	Order    int32  `json:"order"`
}

type OfferedService struct {
	ServiceID   string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// SiteConfig is a singleton row keyed by a fixed id.
type SiteConfig struct {
	SiteName      string `json:"site_name"`
	TagLine       string `json:"tag_line"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	Address       string `json:"address"`
	RazorpayKeyID string `json:"razorpay_key_id"`
}

const siteConfigID = "default"

type Service struct {
	db *reform.DB
	l  *zap.Logger

	// fallback key id when no config row was saved yet
	razorpayKeyID string
}

func NewService(db *reform.DB, razorpayKeyID string) *Service {
	return &Service{
		db:            db,
		l:             zap.L().Named("landing"),
		razorpayKeyID: razorpayKeyID,
	}
}

// Routes registers the public reads and the admin writes.
func (s *Service) Routes(g *echo.Group, authenticate, requireAdmin echo.MiddlewareFunc) {
	g.GET("/slogans", s.listSlogansHandler)
	g.POST("/slogans", s.createSloganHandler, authenticate, requireAdmin)
	g.DELETE("/slogans/:id", s.deleteSloganHandler, authenticate, requireAdmin)

	g.GET("/achievements", s.listAchievementsHandler)
	g.POST("/achievements", s.createAchievementHandler, authenticate, requireAdmin)
	g.DELETE("/achievements/:id", s.deleteAchievementHandler, authenticate, requireAdmin)

	g.GET("/landing/team", s.listTeamHandler)
	g.POST("/landing/team", s.createTeamMemberHandler, authenticate, requireAdmin)
	g.DELETE("/landing/team/:id", s.deleteTeamMemberHandler, authenticate, requireAdmin)

	g.GET("/landing/services", s.listServicesHandler)
	g.POST("/landing/services", s.createServiceHandler, authenticate, requireAdmin)
	g.DELETE("/landing/services/:id", s.deleteServiceHandler, authenticate, requireAdmin)

	g.GET("/landing/config", s.getSiteConfigHandler)
	g.PUT("/landing/config", s.putSiteConfigHandler, authenticate, requireAdmin)
}

func (s *Service) internalError(op string, err error) error {
	s.l.Error("Failed "+op+".", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func (s *Service) deleteByID(c echo.Context, table, column, notFound string) error {
	res, err := s.db.Exec(`DELETE FROM `+table+` WHERE `+column+` = $1`, c.Param("id"))
	if err != nil {
		return s.internalError("delete from "+table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Deleted successfully"})
}

func (s *Service) listSlogansHandler(c echo.Context) error {
	rows, err := s.db.Query(`SELECT slogan_id, text, author, created_at FROM portal.slogans ORDER BY created_at DESC`)
	if err != nil {
		return s.internalError("list slogans", err)
	}
	defer rows.Close()
	out := []Slogan{}
	for rows.Next() {
		var v Slogan
		if err := rows.Scan(&v.SloganID, &v.Text, &v.Author, &v.CreatedAt); err != nil {
			return s.internalError("scan slogan", err)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Service) createSloganHandler(c echo.Context) error {
	var req Slogan
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Slogan text is required")
	}
	req.SloganID = uuid.New().String()
	req.CreatedAt = time.Now()
	_, err := s.db.Exec(
		`INSERT INTO portal.slogans (slogan_id, text, author, created_at) VALUES ($1, $2, $3, $4)`,
		req.SloganID, req.Text, req.Author, req.CreatedAt,
	)
	if err != nil {
		return s.internalError("create slogan", err)
	}
	return c.JSON(http.StatusOK, req)
}

func (s *Service) deleteSloganHandler(c echo.Context) error {
	return s.deleteByID(c, "portal.slogans", "slogan_id", "Slogan not found")
}

func (s *Service) listAchievementsHandler(c echo.Context) error {
	rows, err := s.db.Query(
		`SELECT achievement_id, title, description, image_url, date, created_at
		FROM portal.achievements ORDER BY date DESC`,
	)
	if err != nil {
		return s.internalError("list achievements", err)
	}
	defer rows.Close()
	out := []Achievement{}
	for rows.Next() {
		var v Achievement
		if err := rows.Scan(&v.AchievementID, &v.Title, &v.Description, &v.ImageURL, &v.Date, &v.CreatedAt); err != nil {
			return s.internalError("scan achievement", err)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Service) createAchievementHandler(c echo.Context) error {
	var req Achievement
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Achievement title is required")
	}
	req.AchievementID = uuid.New().String()
	req.CreatedAt = time.Now()
	if req.Date.IsZero() {
		req.Date = req.CreatedAt
	}
	_, err := s.db.Exec(
		`INSERT INTO portal.achievements (achievement_id, title, description, image_url, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		req.AchievementID, req.Title, req.Description, req.ImageURL, req.Date, req.CreatedAt,
	)
	if err != nil {
		return s.internalError("create achievement", err)
	}
	return c.JSON(http.StatusOK, req)
}

func (s *Service) deleteAchievementHandler(c echo.Context) error {
	return s.deleteByID(c, "portal.achievements", "achievement_id", "Achievement not found")
}

func (s *Service) listTeamHandler(c echo.Context) error {
	rows, err := s.db.Query(
		`SELECT member_id, name, role, photo_url, display_order FROM portal.team_members ORDER BY display_order`,
	)
	if err != nil {
		return s.internalError("list team", err)
	}
	defer rows.Close()
	out := []TeamMember{}
	for rows.Next() {
		var v TeamMember
		if err := rows.Scan(&v.MemberID, &v.Name, &v.Role, &v.PhotoURL, &v.Order); err != nil {
			return s.internalError("scan team member", err)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Service) createTeamMemberHandler(c echo.Context) error {
	var req TeamMember
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Member name is required")
	}
	req.MemberID = uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO portal.team_members (member_id, name, role, photo_url, display_order) VALUES ($1, $2, $3, $4, $5)`,
		req.MemberID, req.Name, req.Role, req.PhotoURL, req.Order,
	)
	if err != nil {
		return s.internalError("create team member", err)
	}
	return c.JSON(http.StatusOK, req)
}

func (s *Service) deleteTeamMemberHandler(c echo.Context) error {
	return s.deleteByID(c, "portal.team_members", "member_id", "Team member not found")
}

func (s *Service) listServicesHandler(c echo.Context) error {
	rows, err := s.db.Query(`SELECT service_id, title, description, icon FROM portal.offered_services ORDER BY title`)
	if err != nil {
		return s.internalError("list services", err)
	}
	defer rows.Close()
	out := []OfferedService{}
	for rows.Next() {
		var v OfferedService
		if err := rows.Scan(&v.ServiceID, &v.Title, &v.Description, &v.Icon); err != nil {
			return s.internalError("scan service", err)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Service) createServiceHandler(c echo.Context) error {
	var req OfferedService
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Service title is required")
	}
	req.ServiceID = uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO portal.offered_services (service_id, title, description, icon) VALUES ($1, $2, $3, $4)`,
		req.ServiceID, req.Title, req.Description, req.Icon,
	)
	if err != nil {
		return s.internalError("create service", err)
	}
	return c.JSON(http.StatusOK, req)
}

func (s *Service) deleteServiceHandler(c echo.Context) error {
	return s.deleteByID(c, "portal.offered_services", "service_id", "Service not found")
}

func (s *Service) getSiteConfigHandler(c echo.Context) error {
	var cfg SiteConfig
	err := s.db.QueryRow(
		`SELECT site_name, tag_line, contact_email, contact_phone, address, razorpay_key_id
		FROM portal.site_config WHERE config_id = $1`,
		siteConfigID,
	).Scan(&cfg.SiteName, &cfg.TagLine, &cfg.ContactEmail, &cfg.ContactPhone, &cfg.Address, &cfg.RazorpayKeyID)
	if err != nil && err != sql.ErrNoRows {
		return s.internalError("get site config", err)
	}
	if cfg.RazorpayKeyID == "" {
		cfg.RazorpayKeyID = s.razorpayKeyID
	}
	return c.JSON(http.StatusOK, cfg)
}

func (s *Service) putSiteConfigHandler(c echo.Context) error {
	var req SiteConfig
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	_, err := s.db.Exec(
		`INSERT INTO portal.site_config (config_id, site_name, tag_line, contact_email, contact_phone, address, razorpay_key_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (config_id) DO UPDATE SET
			site_name = EXCLUDED.site_name,
			tag_line = EXCLUDED.tag_line,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			address = EXCLUDED.address,
			razorpay_key_id = EXCLUDED.razorpay_key_id`,
		siteConfigID, req.SiteName, req.TagLine, req.ContactEmail, req.ContactPhone, req.Address, req.RazorpayKeyID,
	)
	if err != nil {
		return s.internalError("save site config", err)
	}
	return c.JSON(http.StatusOK, req)
}
