package dto

import "time"

// ── 显示格式 ──

const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

// DisplayZone 人事系统统一使用的显示时区（UTC+8）
var DisplayZone = time.FixedZone("CST", 8*60*60)

// FormatDate 日期显示
func FormatDate(t time.Time) string { return t.In(DisplayZone).Format(DateLayout) }

// FormatClock 时分显示
func FormatClock(t time.Time) string { return t.In(DisplayZone).Format(ClockLayout) }

// FormatDateTime 日期时间显示
func FormatDateTime(t time.Time) string { return t.In(DisplayZone).Format(DateTimeLayout) }

// ParseDate 解析 YYYY-MM-DD（显示时区零点）
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, DisplayZone)
}

// ParseDateClock 合并 YYYY-MM-DD 与 HH:mm
func ParseDateClock(date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, date+" "+clock, DisplayZone)
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// DateRangeRequest 日期区间查询参数（含首尾）
type DateRangeRequest struct {
	StartDate string `form:"start_date" validate:"omitempty,date"`
	EndDate   string `form:"end_date"   validate:"omitempty,date"`
}

// Range 返回 [start, end) 区间；缺省时为当月
func (r *DateRangeRequest) Range(now time.Time) (time.Time, time.Time, error) {
	now = now.In(DisplayZone)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, DisplayZone)
	end := start.AddDate(0, 1, 0)

	if r.StartDate != "" {
		t, err := ParseDate(r.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
		if r.EndDate == "" {
			end = start.AddDate(0, 1, 0)
		}
	}
	if r.EndDate != "" {
		t, err := ParseDate(r.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}
