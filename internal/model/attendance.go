package model

import "time"

// SentinelPunchTime 人事资料库以固定日期表示「无打卡纪录」
var SentinelPunchTime = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// IsSentinelPunch 判断打卡时间是否为占位值（含零值）。
// 1900 年及更早的时间一律视为占位，不受存储时区影响。
func IsSentinelPunch(t time.Time) bool {
	return t.IsZero() || t.Year() <= SentinelPunchTime.Year()
}

// AttendanceRecord 每日打卡纪录 — 对应 attendance_records
type AttendanceRecord struct {
	RecordID     int64     `gorm:"primaryKey;autoIncrement"      json:"record_id"`
	EmployeeUID  string    `gorm:"type:varchar(50);not null"     json:"employee_uid"`
	WorkDate     time.Time `gorm:"type:date;not null"            json:"work_date"`
	ClockIn      time.Time `gorm:"not null"                      json:"clock_in"`
	ClockInCode  *string   `gorm:"type:varchar(4)"               json:"clock_in_code,omitempty"`
	ClockOut     time.Time `gorm:"not null"                      json:"clock_out"`
	ClockOutCode *string   `gorm:"type:varchar(4)"               json:"clock_out_code,omitempty"`
	BaseModel
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
