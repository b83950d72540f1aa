package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/YuWang03/kunyu-project-sub003/internal/api/middleware"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	"github.com/YuWang03/kunyu-project-sub003/pkg/bpm"
	pkgerrors "github.com/YuWang03/kunyu-project-sub003/pkg/errors"
	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
	"github.com/YuWang03/kunyu-project-sub003/pkg/validate"
)

// MustGetOperator 从 Gin 上下文中安全提取当前操作者。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOperator(c *gin.Context) (service.Operator, bool) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Operator{}, false
	}
	roles, _ := c.Get(middleware.CtxRoles)
	roleList, _ := roles.([]string)
	return service.Operator{UID: uid, Roles: roleList}, true
}

// tokenMeta 当前 Token 的 jti 与过期时间
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenJTI)
	var exp time.Time
	if v, ok := c.Get(middleware.CtxTokenExp); ok {
		exp, _ = v.(time.Time)
	}
	return jti, exp
}

// ── 请求绑定 + 显式校验 ──

// bindJSON 解析 JSON 请求体并校验；失败时已写入响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.BodyTooLarge(c)
			return false
		}
		response.BadRequest(c, 10001, "请求体格式无效")
		return false
	}
	return check(c, req)
}

// bindQuery 解析查询参数并校验；失败时已写入响应
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.BadRequest(c, 10001, "查询参数格式无效")
		return false
	}
	return check(c, req)
}

func check(c *gin.Context, req interface{}) bool {
	if violations := validate.Struct(req); len(violations) > 0 {
		response.ValidationFailed(c, violations)
		return false
	}
	return true
}

// ── 表单错误映射（加班 / 外出共用） ──

func handleFormError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		response.NotFound(c, 15001, "表单不存在")
	case errors.Is(err, service.ErrFormForbidden):
		response.Forbidden(c, 15002, "无权操作该表单")
	case errors.Is(err, service.ErrFormNotSubmitted):
		response.Conflict(c, 15003, "表单尚未送至 BPM")
	case errors.Is(err, service.ErrSelfApproval):
		response.Forbidden(c, 15004, "不能签核本人的表单")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 12001, service.ErrInvalidDateRange.Error())
	case errors.Is(err, service.ErrOvertimeInvalidTime):
		response.BadRequest(c, 13001, service.ErrOvertimeInvalidTime.Error())
	case errors.Is(err, service.ErrOvertimeTooShort):
		response.BadRequest(c, 13002, service.ErrOvertimeTooShort.Error())
	case errors.Is(err, service.ErrOvertimeTooLong):
		response.BadRequest(c, 13003, service.ErrOvertimeTooLong.Error())
	case errors.Is(err, service.ErrOutingInvalidTime):
		response.BadRequest(c, 14001, service.ErrOutingInvalidTime.Error())
	case errors.Is(err, service.ErrOutingInvalidType):
		response.BadRequest(c, 14002, service.ErrOutingInvalidType.Error())
	case errors.Is(err, pkgerrors.ErrUpstreamUnavailable):
		response.BadGateway(c, 50201, pkgerrors.ErrUpstreamUnavailable.Error())
	default:
		var apiErr *bpm.APIError
		if errors.As(err, &apiErr) {
			response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 15005, "BPM 拒绝了该操作", apiErr.Message)
			return
		}
		response.InternalError(c)
	}
}
