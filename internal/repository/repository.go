package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Employee   EmployeeRepository
	Attendance AttendanceRepository
	Overtime   OvertimeRepository
	Outing     OutingRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Employee:   NewEmployeeRepo(db),
		Attendance: NewAttendanceRepo(db),
		Overtime:   NewOvertimeRepo(db),
		Outing:     NewOutingRepo(db),
		db:         db,
	}
}

// Transaction 在事务内执行 fn，返回错误时回滚
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		// 未绑定连接（手工组装的聚合）时直接执行
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// FormFilter 表单列表过滤条件；时间区间为 [From, To)
type FormFilter struct {
	ApplicantUID string
	From         time.Time
	To           time.Time
	Status       string
	Type         string // 仅外出单使用
	Offset       int
	Limit        int
}

// apply 将通用过滤条件套用到查询
func (f FormFilter) apply(db *gorm.DB) *gorm.DB {
	if f.ApplicantUID != "" {
		db = db.Where("applicant_uid = ?", f.ApplicantUID)
	}
	if !f.From.IsZero() {
		db = db.Where("start_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("start_at < ?", f.To)
	}
	if f.Status != "" {
		db = db.Where("approval_status = ?", f.Status)
	}
	return db
}
