package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// List 区间打卡纪录
// GET /api/v1/attendance?start_date=&end_date=&uid=
func (h *AttendanceHandler) List(c *gin.Context) {
	uid, req, ok := h.resolve(c)
	if !ok {
		return
	}
	records, err := h.attendanceSvc.Query(c.Request.Context(), uid, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, records)
}

// FollowUps 需后续处理的打卡纪录
// GET /api/v1/attendance/follow-ups
func (h *AttendanceHandler) FollowUps(c *gin.Context) {
	uid, req, ok := h.resolve(c)
	if !ok {
		return
	}
	records, err := h.attendanceSvc.FollowUps(c.Request.Context(), uid, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, records)
}

// Summary 区间统计
// GET /api/v1/attendance/summary
func (h *AttendanceHandler) Summary(c *gin.Context) {
	uid, req, ok := h.resolve(c)
	if !ok {
		return
	}
	summary, err := h.attendanceSvc.Summary(c.Request.Context(), uid, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, summary)
}

// Export 导出 Excel
// GET /api/v1/attendance/export
func (h *AttendanceHandler) Export(c *gin.Context) {
	uid, req, ok := h.resolve(c)
	if !ok {
		return
	}
	buf, filename, err := h.attendanceSvc.Export(c.Request.Context(), uid, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Codes 考勤代码对照表
// GET /api/v1/attendance/codes
func (h *AttendanceHandler) Codes(c *gin.Context) {
	response.OK(c, h.attendanceSvc.Codes())
}

// resolve 解析查询参数与目标员工；查看他人需主管角色
func (h *AttendanceHandler) resolve(c *gin.Context) (string, *dto.AttendanceQueryRequest, bool) {
	op, ok := MustGetOperator(c)
	if !ok {
		return "", nil, false
	}
	var req dto.AttendanceQueryRequest
	if !bindQuery(c, &req) {
		return "", nil, false
	}

	uid := op.UID
	if req.EmployeeUID != "" && req.EmployeeUID != op.UID {
		if !op.IsManager() {
			response.Forbidden(c, 10003, "无权查看他人考勤")
			return "", nil, false
		}
		uid = req.EmployeeUID
	}
	return uid, &req, true
}

func (h *AttendanceHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 12001, service.ErrInvalidDateRange.Error())
	case errors.Is(err, service.ErrDateRangeTooLong):
		response.BadRequest(c, 12002, service.ErrDateRangeTooLong.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
