package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
)

// OutingHandler 外出模块 HTTP 处理器
type OutingHandler struct {
	outingSvc service.OutingService
}

// NewOutingHandler 创建 OutingHandler
func NewOutingHandler(outingSvc service.OutingService) *OutingHandler {
	return &OutingHandler{outingSvc: outingSvc}
}

// Submit 提交外出单
// POST /api/v1/outings
func (h *OutingHandler) Submit(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}
	var req dto.SubmitOutingRequest
	if !bindJSON(c, &req) {
		return
	}

	detail, err := h.outingSvc.Submit(c.Request.Context(), op, &req)
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.Created(c, detail)
}

// List 外出单列表
// GET /api/v1/outings
func (h *OutingHandler) List(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}
	var req dto.OutingListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.outingSvc.List(c.Request.Context(), op, &req)
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 外出单详情
// GET /api/v1/outings/:id
func (h *OutingHandler) Get(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}

	detail, err := h.outingSvc.Get(c.Request.Context(), op, c.Param("id"))
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OK(c, detail)
}

// Approve 签核外出单
// POST /api/v1/outings/:id/approval
func (h *OutingHandler) Approve(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}
	var req dto.ApproveFormRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.outingSvc.Approve(c.Request.Context(), op, c.Param("id"), &req)
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OK(c, result)
}

// Sync 从 BPM 同步签核状态
// POST /api/v1/outings/:id/sync
func (h *OutingHandler) Sync(c *gin.Context) {
	op, ok := MustGetOperator(c)
	if !ok {
		return
	}

	result, err := h.outingSvc.SyncStatus(c.Request.Context(), op, c.Param("id"))
	if err != nil {
		handleFormError(c, err)
		return
	}
	response.OK(c, result)
}
