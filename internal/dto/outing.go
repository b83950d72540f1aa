package dto

// ── 外出（出差）模块 DTO ──

// AttachmentInput 已上传至 FTP 的附件信息
type AttachmentInput struct {
	FileName  string `json:"file_name"  validate:"required,max=255"`
	SizeBytes int64  `json:"size_bytes" validate:"min=0"`
}

// SubmitOutingRequest 外出申请
type SubmitOutingRequest struct {
	Type        string            `json:"type"        validate:"required,oneof=business_trip official_outing training"`
	StartDate   string            `json:"start_date"  validate:"required,date"`
	StartTime   string            `json:"start_time"  validate:"required,clock"`
	EndDate     string            `json:"end_date"    validate:"required,date"`
	EndTime     string            `json:"end_time"    validate:"required,clock"`
	Location    string            `json:"location"    validate:"required,max=200"`
	Reason      string            `json:"reason"      validate:"required,max=500"`
	Attachments []AttachmentInput `json:"attachments" validate:"max=10,dive"`
}

// OutingListRequest 外出单列表查询参数
type OutingListRequest struct {
	PaginationRequest
	DateRangeRequest
	Type   string `form:"type"   validate:"omitempty,oneof=business_trip official_outing training"`
	Status string `form:"status" validate:"omitempty,max=50"`
}

// OutingListItem 外出单列表项
type OutingListItem struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	TypeLabel      string `json:"type_label"`
	ApplicantUID   string `json:"applicant_uid"`
	ApplicantName  string `json:"applicant_name,omitempty"`
	StartAt        string `json:"start_at"`
	EndAt          string `json:"end_at"`
	Location       string `json:"location"`
	ApprovalStatus string `json:"approval_status"`
	CreatedAt      string `json:"created_at"`
}

// OutingDetail 外出单详情（含签核历程与附件）
type OutingDetail struct {
	OutingListItem
	Reason      string               `json:"reason"`
	BPMFormID   string               `json:"bpm_form_id"`
	Approvals   []ApprovalEntry      `json:"approvals"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// ApprovalEntry 签核历程（按签核时间排序）
type ApprovalEntry struct {
	ApproverUID  string `json:"approver_uid"`
	ApproverName string `json:"approver_name,omitempty"`
	Decision     string `json:"decision"`
	Comment      string `json:"comment,omitempty"`
	ResultState  string `json:"result_state"`
	ApprovedAt   string `json:"approved_at"`
}

// AttachmentResponse 附件位置
type AttachmentResponse struct {
	FileName  string `json:"file_name"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
}
