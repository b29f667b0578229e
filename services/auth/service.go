package auth

import (
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shrujansacharya/Team-Connect-App/services/members"
)

type Service struct {
	users         members.UserStore
	tokens        *Tokens
	adminPassword string
	l             *zap.Logger
}

func NewService(users members.UserStore, tokens *Tokens, adminPassword string) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		adminPassword: adminPassword,
		l:             zap.L().Named("auth"),
	}
}

// Routes mounts the auth endpoints. The guard is only needed for /me.
func (s *Service) Routes(g *echo.Group, guard *Guard) {
	g.POST("/auth/register", s.registerHandler)
	g.POST("/auth/login", s.loginHandler)
	g.POST("/auth/admin-login", s.adminLoginHandler)
	g.GET("/auth/me", s.meHandler, guard.Authenticate)
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *members.User `json:"user"`
}

func (s *Service) registerHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.FullName == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
	}
	if len(req.Password) > 72 {
		// bcrypt truncates beyond 72 bytes
		return echo.NewHTTPError(http.StatusBadRequest, "Password is too long (max 72 bytes)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	u := &members.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		IsApproved:   false,
		Role:         members.RoleUser,
	}
	if err := s.users.Create(c.Request().Context(), u); err != nil {
		switch err {
		case members.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		case members.ErrPhoneTaken:
			return echo.NewHTTPError(http.StatusBadRequest, "Phone number already registered")
		}
		s.l.Error("Failed register user.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	s.l.Info("New registration pending approval.", zap.String("user_id", u.UserID))
	return c.JSON(http.StatusOK, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) loginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	u, err := s.users.FindByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := s.tokens.Issue(u.UserID, u.Role)
	if err != nil {
		s.l.Error("Failed issue token.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", User: u})
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

func (s *Service) adminLoginHandler(c echo.Context) error {
	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if s.adminPassword == "" || req.Password != s.adminPassword {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin password")
	}

	token, err := s.tokens.Issue(AdminID, members.RoleAdmin)
	if err != nil {
		s.l.Error("Failed issue admin token.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", User: adminUser()})
}

func (s *Service) meHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, CurrentUser(c))
}
