package dto

import (
	"encoding/json"
	"time"

	"github.com/YuWang03/kunyu-project-sub003/internal/model"
)

// ── 考勤模块 DTO ──

// AttendanceQueryRequest 考勤查询参数；uid 留空表示本人
type AttendanceQueryRequest struct {
	DateRangeRequest
	EmployeeUID string `form:"uid" validate:"omitempty,max=50"`
}

// AttendanceRecord 单日打卡结果。
// 打卡时间为 nil 表示无纪录（显示为「應刷未刷」）；状态文字一律由代码推导。
type AttendanceRecord struct {
	Date         string
	ClockIn      *time.Time
	ClockInCode  *string
	ClockOut     *time.Time
	ClockOutCode *string
}

// NewAttendanceRecord 由资料库纪录构造；占位时间转为 nil
func NewAttendanceRecord(rec *model.AttendanceRecord) AttendanceRecord {
	r := AttendanceRecord{
		Date:         FormatDate(rec.WorkDate),
		ClockInCode:  rec.ClockInCode,
		ClockOutCode: rec.ClockOutCode,
	}
	if !model.IsSentinelPunch(rec.ClockIn) {
		t := rec.ClockIn
		r.ClockIn = &t
	}
	if !model.IsSentinelPunch(rec.ClockOut) {
		t := rec.ClockOut
		r.ClockOut = &t
	}
	return r
}

// effectiveCode 有代码用代码；无代码且无打卡视为應刷未刷
func effectiveCode(code *string, punch *time.Time) model.AttendanceCode {
	if code != nil {
		return model.ParseAttendanceCode(*code)
	}
	if punch == nil {
		return model.CodeNotClocked
	}
	return model.CodeNormal
}

// ClockInCodeValue 上班卡实际代码
func (r AttendanceRecord) ClockInCodeValue() model.AttendanceCode {
	return effectiveCode(r.ClockInCode, r.ClockIn)
}

// ClockOutCodeValue 下班卡实际代码
func (r AttendanceRecord) ClockOutCodeValue() model.AttendanceCode {
	return effectiveCode(r.ClockOutCode, r.ClockOut)
}

// ClockInStatus 上班卡状态文字
func (r AttendanceRecord) ClockInStatus() string { return r.ClockInCodeValue().Label() }

// ClockOutStatus 下班卡状态文字
func (r AttendanceRecord) ClockOutStatus() string { return r.ClockOutCodeValue().Label() }

// ClockInDisplay 上班时间或「應刷未刷」
func (r AttendanceRecord) ClockInDisplay() string { return punchDisplay(r.ClockIn) }

// ClockOutDisplay 下班时间或「應刷未刷」
func (r AttendanceRecord) ClockOutDisplay() string { return punchDisplay(r.ClockOut) }

// NeedsFollowUp 任一打卡需后续处理
func (r AttendanceRecord) NeedsFollowUp() bool {
	return r.ClockInCodeValue().RequiresFollowUp() || r.ClockOutCodeValue().RequiresFollowUp()
}

func punchDisplay(t *time.Time) string {
	if t == nil {
		return model.LabelNotClocked
	}
	return FormatClock(*t)
}

type attendanceRecordJSON struct {
	Date           string  `json:"date"`
	ClockIn        string  `json:"clock_in"`
	ClockInStatus  string  `json:"clock_in_status"`
	ClockInCode    *string `json:"clock_in_code,omitempty"`
	ClockOut       string  `json:"clock_out"`
	ClockOutStatus string  `json:"clock_out_status"`
	ClockOutCode   *string `json:"clock_out_code,omitempty"`
	NeedsFollowUp  bool    `json:"needs_follow_up"`
}

// MarshalJSON 每次输出时重新推导显示字段
func (r AttendanceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(attendanceRecordJSON{
		Date:           r.Date,
		ClockIn:        r.ClockInDisplay(),
		ClockInStatus:  r.ClockInStatus(),
		ClockInCode:    r.ClockInCode,
		ClockOut:       r.ClockOutDisplay(),
		ClockOutStatus: r.ClockOutStatus(),
		ClockOutCode:   r.ClockOutCode,
		NeedsFollowUp:  r.NeedsFollowUp(),
	})
}

// AttendanceSummary 区间统计
type AttendanceSummary struct {
	EmployeeUID  string         `json:"employee_uid"`
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	TotalDays    int            `json:"total_days"`
	FollowUpDays int            `json:"follow_up_days"`
	StatusCounts map[string]int `json:"status_counts"` // 状态文字 → 次数（上下班卡分别计）
}

// AttendanceCodeItem 代码对照表项
type AttendanceCodeItem struct {
	Code             string `json:"code"`
	Label            string `json:"label"`
	RequiresFollowUp bool   `json:"requires_follow_up"`
}
