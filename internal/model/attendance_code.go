package model

// ── 考勤异常代码 ──

// AttendanceCode 打卡异常代码。
// 已定义代码为封闭集合；其它任何值视为「未识别」变体，原值保留在字符串本身中。
type AttendanceCode string

const (
	CodeNormal     AttendanceCode = ""  // 正常
	CodeNotClocked AttendanceCode = "0" // 應刷未刷
	CodeLate       AttendanceCode = "1" // 遲到
	CodeEarlyLeave AttendanceCode = "2" // 早退
	CodeOnLeave    AttendanceCode = "3" // 請假
	CodeAbsent     AttendanceCode = "4" // 曠職
)

// 状态标签
const (
	LabelNormal     = "正常"
	LabelNotClocked = "應刷未刷"
	LabelLate       = "遲到"
	LabelEarlyLeave = "早退"
	LabelOnLeave    = "請假"
	LabelAbsent     = "曠職"
	LabelUnknown    = "未知"
)

var attendanceLabels = map[AttendanceCode]string{
	CodeNormal:     LabelNormal,
	CodeNotClocked: LabelNotClocked,
	CodeLate:       LabelLate,
	CodeEarlyLeave: LabelEarlyLeave,
	CodeOnLeave:    LabelOnLeave,
	CodeAbsent:     LabelAbsent,
}

// AttendanceCodes 按代码顺序列出全部已定义代码
var AttendanceCodes = []AttendanceCode{
	CodeNormal, CodeNotClocked, CodeLate, CodeEarlyLeave, CodeOnLeave, CodeAbsent,
}

// ParseAttendanceCode 将原始代码转为 AttendanceCode，从不失败
func ParseAttendanceCode(raw string) AttendanceCode {
	return AttendanceCode(raw)
}

// Known 是否为已定义代码
func (c AttendanceCode) Known() bool {
	_, ok := attendanceLabels[c]
	return ok
}

// Raw 返回原始代码值
func (c AttendanceCode) Raw() string { return string(c) }

// Label 返回状态描述；未识别代码返回「未知」
func (c AttendanceCode) Label() string {
	if label, ok := attendanceLabels[c]; ok {
		return label
	}
	return LabelUnknown
}

// RequiresFollowUp 仅「應刷未刷」与「曠職」需要后续处理
func (c AttendanceCode) RequiresFollowUp() bool {
	return c == CodeNotClocked || c == CodeAbsent
}

// DescribeAttendanceCode 描述可缺省的代码；nil 视为正常
func DescribeAttendanceCode(code *string) string {
	if code == nil {
		return LabelNormal
	}
	return ParseAttendanceCode(*code).Label()
}

// RequiresFollowUp 判断可缺省的代码是否需要后续处理；nil 返回 false
func RequiresFollowUp(code *string) bool {
	if code == nil {
		return false
	}
	return ParseAttendanceCode(*code).RequiresFollowUp()
}
