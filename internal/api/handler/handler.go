package handler

import (
	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Attendance *AttendanceHandler
	Overtime   *OvertimeHandler
	Outing     *OutingHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, cfg),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Overtime:   NewOvertimeHandler(svc.Overtime),
		Outing:     NewOutingHandler(svc.Outing),
	}
}
