package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
)

// OvertimeHandler 加班模块 HTTP 处理器
type OvertimeHandler struct {
	overtimeSvc service.OvertimeService
}

// NewOvertimeHandler 创建 OvertimeHandler
func NewOvertimeHandler(overtimeSvc service.OvertimeService) *OvertimeHandler {
	return &OvertimeHandler{overtimeSvc: overtimeSvc}
}

// Submit 提交加班单
// POST /api/v1/overtime
func (h *OvertimeHandler) Submit(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}
	var req dto.SubmitOvertimeRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.overtimeSvc.Submit(c.Request.Context(), op, &req)
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.Created(c, rec)
}

// List 加班单列表
// GET /api/v1/overtime
func (h *OvertimeHandler) List(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}
	var req dto.OvertimeListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.overtimeSvc.List(c.Request.Context(), op, &req)
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 加班单详情
// GET /api/v1/overtime/:id
func (h *OvertimeHandler) Get(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}

	rec, err := h.overtimeSvc.Get(c.Request.Context(), op, c.Param("id"))
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OK(c, rec)
}

// Approve 签核加班单
// POST /api/v1/overtime/:id/approval
func (h *OvertimeHandler) Approve(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}
	var req dto.ApproveFormRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.overtimeSvc.Approve(c.Request.Context(), op, c.Param("id"), &req)
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OK(c, result)
}

// Sync 从 BPM 同步签核状态
// POST /api/v1/overtime/:id/sync
func (h *OvertimeHandler) Sync(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}

	result, err := h.overtimeSvc.SyncStatus(c.Request.Context(), op, c.Param("id"))
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OK(c, result)
}
