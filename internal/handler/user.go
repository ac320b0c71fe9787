package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/its-ok-zid/movie-booking/internal/config"
	"github.com/its-ok-zid/movie-booking/internal/model"
	"github.com/its-ok-zid/movie-booking/internal/service"
	"github.com/its-ok-zid/movie-booking/internal/utils"
)

// UserHandler bundles dependencies for the account endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *service.UserService
}

func NewUserHandler(cfg config.Config, users *service.UserService) *UserHandler {
	if users == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type loginReq struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type forgotPasswordReq struct {
	LoginID string `json:"login_id"`
}

type resetPasswordReq struct {
	LoginID         string `json:"login_id"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type userPart struct {
	LoginID       string `json:"login_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Role          string `json:"role"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		LoginID:       u.LoginID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
		Role:          string(u.Role),
	}
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Register creates a new account. The engine enforces field presence,
// email syntax and password complexity; duplicates surface as 409.
func (h *UserHandler) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	created, err := h.Users.Register(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserPart(created))
}

// Login verifies credentials and returns a short-lived access token.
// Unknown login ids and wrong passwords produce the same 401 so account
// existence is never disclosed.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.LoginID == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login_id/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Users.Login(ctx, req.LoginID, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	u, err := h.Users.Profile(ctx, req.LoginID)
	if err != nil {
		return respondError(c, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.LoginID, string(u.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		User:   toUserPart(u),
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// ForgotPassword returns the recovery message with the account email
// masked. Email dispatch is handled elsewhere.
func (h *UserHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.LoginID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login_id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, err := h.Users.ForgotPassword(ctx, req.LoginID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// ResetPassword replaces the account password subject to the engine's
// complexity and reset-safety rules.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, err := h.Users.ResetPassword(ctx, req.LoginID, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
