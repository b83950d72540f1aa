package dto

// ── 加班模块 DTO ──

// SubmitOvertimeRequest 加班申请
type SubmitOvertimeRequest struct {
	Date        string `json:"date"         validate:"required,date"`
	StartTime   string `json:"start_time"   validate:"required,clock"`
	EndTime     string `json:"end_time"     validate:"required,clock"`
	Reason      string `json:"reason"       validate:"required,max=500"`
	NotifyEmail string `json:"notify_email" validate:"omitempty,email,max=255"`
}

// OvertimeListRequest 加班单列表查询参数
type OvertimeListRequest struct {
	PaginationRequest
	DateRangeRequest
	Status string `form:"status" validate:"omitempty,max=50"`
}

// OvertimeRecord 加班单显示结构
type OvertimeRecord struct {
	ID             string  `json:"id"`
	ApplicantUID   string  `json:"applicant_uid"`
	ApplicantName  string  `json:"applicant_name,omitempty"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Hours          float64 `json:"hours"`
	Reason         string  `json:"reason"`
	NotifyEmail    string  `json:"notify_email,omitempty"`
	BPMFormID      string  `json:"bpm_form_id"`
	ApprovalStatus string  `json:"approval_status"`
	CreatedAt      string  `json:"created_at"`
}

// ── 表单签核（加班 / 外出共用） ──

// ApproveFormRequest 签核请求
type ApproveFormRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Comment  string `json:"comment"  validate:"max=500"`
}

// FormStatusResponse 表单签核状态
type FormStatusResponse struct {
	ID             string `json:"id"`
	BPMFormID      string `json:"bpm_form_id"`
	ApprovalStatus string `json:"approval_status"`
}
