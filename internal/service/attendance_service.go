package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/model"
	"github.com/YuWang03/kunyu-project-sub003/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrInvalidDateRange = errors.New("日期区间无效：结束日期不能早于开始日期")
	ErrDateRangeTooLong = errors.New("查询区间不能超过 366 天")
)

const maxQueryDays = 366

// AttendanceService 考勤查询业务接口
type AttendanceService interface {
	// Query 查询区间内每日打卡结果
	Query(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) ([]dto.AttendanceRecord, error)
	// FollowUps 仅返回需后续处理（應刷未刷 / 曠職）的日期
	FollowUps(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) ([]dto.AttendanceRecord, error)
	// Summary 区间统计
	Summary(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) (*dto.AttendanceSummary, error)
	// Export 导出为 Excel，返回内容与建议文件名
	Export(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) (*bytes.Buffer, string, error)
	// Codes 代码对照表
	Codes() []dto.AttendanceCodeItem
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger, now: time.Now}
}

func (s *attendanceService) Query(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) ([]dto.AttendanceRecord, error) {
	records, _, _, err := s.load(ctx, uid, req)
	return records, err
}

func (s *attendanceService) FollowUps(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) ([]dto.AttendanceRecord, error) {
	records, _, _, err := s.load(ctx, uid, req)
	if err != nil {
		return nil, err
	}
	result := make([]dto.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.NeedsFollowUp() {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *attendanceService) Summary(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) (*dto.AttendanceSummary, error) {
	records, from, to, err := s.load(ctx, uid, req)
	if err != nil {
		return nil, err
	}

	summary := &dto.AttendanceSummary{
		EmployeeUID:  uid,
		StartDate:    dto.FormatDate(from),
		EndDate:      dto.FormatDate(to.AddDate(0, 0, -1)),
		TotalDays:    len(records),
		StatusCounts: make(map[string]int),
	}
	for _, r := range records {
		summary.StatusCounts[r.ClockInStatus()]++
		summary.StatusCounts[r.ClockOutStatus()]++
		if r.NeedsFollowUp() {
			summary.FollowUpDays++
		}
	}
	return summary, nil
}

func (s *attendanceService) Codes() []dto.AttendanceCodeItem {
	items := make([]dto.AttendanceCodeItem, 0, len(model.AttendanceCodes))
	for _, c := range model.AttendanceCodes {
		items = append(items, dto.AttendanceCodeItem{
			Code:             c.Raw(),
			Label:            c.Label(),
			RequiresFollowUp: c.RequiresFollowUp(),
		})
	}
	return items
}

// load 解析区间并读取纪录，返回 [from, to)
func (s *attendanceService) load(ctx context.Context, uid string, req *dto.AttendanceQueryRequest) ([]dto.AttendanceRecord, time.Time, time.Time, error) {
	from, to, err := req.Range(s.now())
	if err != nil {
		return nil, from, to, ErrInvalidDateRange
	}
	if !to.After(from) {
		return nil, from, to, ErrInvalidDateRange
	}
	if to.Sub(from) > maxQueryDays*24*time.Hour {
		return nil, from, to, ErrDateRangeTooLong
	}

	rows, err := s.repo.Attendance.ListByEmployee(ctx, uid, from, to)
	if err != nil {
		s.logger.Error("查询打卡纪录失败", zap.String("uid", uid), zap.Error(err))
		return nil, from, to, err
	}

	records := make([]dto.AttendanceRecord, 0, len(rows))
	for i := range rows {
		records = append(records, dto.NewAttendanceRecord(&rows[i]))
	}
	return records, from, to, nil
}
