package dto

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/YuWang03/kunyu-project-sub003/internal/model"
)

func strPtr(s string) *string { return &s }

func TestNewAttendanceRecord_Sentinel(t *testing.T) {
	rec := &model.AttendanceRecord{
		WorkDate: time.Date(2024, 3, 1, 0, 0, 0, 0, DisplayZone),
		ClockIn:  time.Date(2024, 3, 1, 8, 55, 0, 0, DisplayZone),
		ClockOut: model.SentinelPunchTime,
	}
	r := NewAttendanceRecord(rec)

	if r.Date != "2024-03-01" {
		t.Errorf("期望日期 2024-03-01，实际 %s", r.Date)
	}
	if r.ClockIn == nil || r.ClockInDisplay() != "08:55" {
		t.Errorf("上班卡显示错误: %s", r.ClockInDisplay())
	}
	if r.ClockOut != nil {
		t.Error("占位时间应转为 nil")
	}
	if r.ClockOutDisplay() != model.LabelNotClocked || r.ClockOutStatus() != model.LabelNotClocked {
		t.Errorf("无下班卡应显示 應刷未刷，实际 %s / %s", r.ClockOutDisplay(), r.ClockOutStatus())
	}
	if !r.NeedsFollowUp() {
		t.Error("缺下班卡应需后续处理")
	}
}

func TestAttendanceRecord_StatusFromCode(t *testing.T) {
	in := time.Date(2024, 3, 1, 9, 20, 0, 0, DisplayZone)
	out := time.Date(2024, 3, 1, 18, 0, 0, 0, DisplayZone)

	r := AttendanceRecord{Date: "2024-03-01", ClockIn: &in, ClockInCode: strPtr("1"), ClockOut: &out}
	if r.ClockInStatus() != "遲到" {
		t.Errorf("期望 遲到，实际 %s", r.ClockInStatus())
	}
	if r.ClockOutStatus() != "正常" {
		t.Errorf("期望 正常，实际 %s", r.ClockOutStatus())
	}
	if r.NeedsFollowUp() {
		t.Error("遲到不需后续处理")
	}

	r.ClockInCode = strPtr("4")
	if r.ClockInStatus() != "曠職" || !r.NeedsFollowUp() {
		t.Error("修改代码后状态应随之改变")
	}

	r.ClockInCode = strPtr("7")
	if r.ClockInStatus() != "未知" {
		t.Errorf("未识别代码期望 未知，实际 %s", r.ClockInStatus())
	}
}

func TestAttendanceRecord_MarshalJSON_Idempotent(t *testing.T) {
	in := time.Date(2024, 3, 1, 0, 55, 0, 0, time.UTC) // 08:55 CST
	r := AttendanceRecord{Date: "2024-03-01", ClockIn: &in, ClockOutCode: strPtr("0")}

	first, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	second, _ := json.Marshal(r)
	if !bytes.Equal(first, second) {
		t.Errorf("重复序列化结果不一致:\n%s\n%s", first, second)
	}

	var got map[string]interface{}
	json.Unmarshal(first, &got)
	if got["clock_in"] != "08:55" {
		t.Errorf("期望以 UTC+8 显示 08:55，实际 %v", got["clock_in"])
	}
	if got["clock_out"] != "應刷未刷" || got["clock_out_status"] != "應刷未刷" {
		t.Errorf("下班卡显示错误: %v / %v", got["clock_out"], got["clock_out_status"])
	}
	if got["needs_follow_up"] != true {
		t.Error("needs_follow_up 应为 true")
	}
	if _, ok := got["clock_in_code"]; ok {
		t.Error("无代码时不应输出 clock_in_code")
	}
}

func TestUserInfo_IsActiveDerived(t *testing.T) {
	emp := &model.Employee{UID: "E001", Name: "王小明", Status: model.EmployeeSuspended}
	info := NewUserInfo(emp, nil)

	if info.Roles == nil {
		t.Error("roles 不应为 nil")
	}
	b, _ := json.Marshal(info)
	var got map[string]interface{}
	json.Unmarshal(b, &got)
	if got["is_active"] != false {
		t.Errorf("留停员工 is_active 应为 false，实际 %v", got["is_active"])
	}

	info.Status = model.EmployeeWorking
	b, _ = json.Marshal(info)
	json.Unmarshal(b, &got)
	if got["is_active"] != true {
		t.Errorf("在职员工 is_active 应为 true，实际 %v", got["is_active"])
	}
	if got["status"] != "W" {
		t.Errorf("期望 status W，实际 %v", got["status"])
	}
}

func TestDateRangeRequest_Range(t *testing.T) {
	now := time.Date(2024, 2, 14, 10, 0, 0, 0, DisplayZone)

	var empty DateRangeRequest
	start, end, err := empty.Range(now)
	if err != nil {
		t.Fatalf("意外错误: %v", err)
	}
	if FormatDate(start) != "2024-02-01" || FormatDate(end) != "2024-03-01" {
		t.Errorf("缺省应为当月，实际 %s ~ %s", FormatDate(start), FormatDate(end))
	}

	r := DateRangeRequest{StartDate: "2024-03-10", EndDate: "2024-03-12"}
	start, end, _ = r.Range(now)
	if FormatDate(start) != "2024-03-10" || FormatDate(end) != "2024-03-13" {
		t.Errorf("结束日应包含在内，实际 %s ~ %s", FormatDate(start), FormatDate(end))
	}

	onlyStart := DateRangeRequest{StartDate: "2024-01-15"}
	_, end, _ = onlyStart.Range(now)
	if FormatDate(end) != "2024-02-15" {
		t.Errorf("仅给开始日时应取一个月，实际结束 %s", FormatDate(end))
	}

	bad := DateRangeRequest{StartDate: "2024-02-30"}
	if _, _, err := bad.Range(now); err == nil {
		t.Error("非法日期应返回错误")
	}
}

func TestPaginationRequest_Defaults(t *testing.T) {
	var p PaginationRequest
	if p.GetPage() != 1 || p.GetPageSize() != 20 || p.GetOffset() != 0 {
		t.Errorf("默认分页错误: %d %d %d", p.GetPage(), p.GetPageSize(), p.GetOffset())
	}
	p = PaginationRequest{Page: 3, PageSize: 10}
	if p.GetOffset() != 20 {
		t.Errorf("期望偏移 20，实际 %d", p.GetOffset())
	}
}
