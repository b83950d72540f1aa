package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/internal/model"
)

// AttendanceRepository 打卡纪录访问接口（只读，资料由打卡系统写入）
type AttendanceRepository interface {
	// ListByEmployee 查询 [from, to) 区间内的纪录，按日期升序
	ListByEmployee(ctx context.Context, uid string, from, to time.Time) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) ListByEmployee(ctx context.Context, uid string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_uid = ? AND work_date >= ? AND work_date < ?", uid, from, to).
		Order("work_date ASC").
		Find(&records).Error
	return records, err
}
