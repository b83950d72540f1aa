package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	pkgerrors "github.com/YuWang03/kunyu-project-sub003/pkg/errors"
	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
)

const refreshCookieName = "refresh_token"

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc      service.AuthService
	cookieSecure bool
}

// NewAuthHandler 创建 AuthHandler；cfg 可为 nil
func NewAuthHandler(authSvc service.AuthService, cfg *config.Config) *AuthHandler {
	h := &AuthHandler{authSvc: authSvc}
	if cfg != nil {
		h.cookieSecure = cfg.Server.CookieSecure
	}
	return h
}

// Login 员工登录（账号密码转交身份提供者）
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// RefreshToken 刷新 Token；refresh_token 取自请求体或 Cookie
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		if v, err := c.Cookie(refreshCookieName); err == nil {
			req.RefreshToken = v
		}
	}
	if !check(c, &req) {
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Logout 注销当前 Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}
	h.setRefreshCookie(c, "")
	response.OK(c, nil)
}

// GetCurrentUser 当前登录员工信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}

	info, err := h.authSvc.Me(c.Request.Context(), op)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, info)
}

// setRefreshCookie 写入 HttpOnly Cookie；值为空时清除
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	maxAge := 7 * 24 * 3600
	if token == "" {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, maxAge, "/api/v1/auth", "", h.cookieSecure, true)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "账号或密码错误")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11002, "登录已过期，请重新登录")
	case errors.Is(err, service.ErrTokenRejected):
		response.Unauthorized(c, 11003, "Token 校验失败")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.Forbidden(c, 11004, "人事资料中查无此员工")
	case errors.Is(err, pkgerrors.ErrEmployeeInactive):
		response.Forbidden(c, 11005, "员工非在职状态")
	case errors.Is(err, pkgerrors.ErrUpstreamUnavailable):
		response.BadGateway(c, 50201, "身份提供者暂时无法连线")
	default:
		response.InternalError(c)
	}
}
