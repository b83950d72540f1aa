package model

import "time"

// OutingType 外出类型
type OutingType string

const (
	OutingBusinessTrip OutingType = "business_trip"   // 出差
	OutingOfficial     OutingType = "official_outing" // 公出
	OutingTraining     OutingType = "training"        // 培訓
)

// OutingTypes 已定义外出类型 → 中文名称
var OutingTypes = map[OutingType]string{
	OutingBusinessTrip: "出差",
	OutingOfficial:     "公出",
	OutingTraining:     "培訓",
}

// Label 外出类型中文名称
func (t OutingType) Label() string {
	if l, ok := OutingTypes[t]; ok {
		return l
	}
	return string(t)
}

// OutingForm 外出（出差）单 — 对应 outing_forms
type OutingForm struct {
	FormID         string     `gorm:"type:uuid;primaryKey"                    json:"form_id"`
	ApplicantUID   string     `gorm:"type:varchar(50);not null"               json:"applicant_uid"`
	Type           OutingType `gorm:"type:varchar(30);not null"               json:"type"`
	StartAt        time.Time  `gorm:"not null"                                json:"start_at"`
	EndAt          time.Time  `gorm:"not null"                                json:"end_at"`
	Location       string     `gorm:"type:varchar(200);not null"              json:"location"`
	Reason         string     `gorm:"type:varchar(500);not null"              json:"reason"`
	BPMFormID      string     `gorm:"column:bpm_form_id;type:varchar(64)"     json:"bpm_form_id"`
	ApprovalStatus string     `gorm:"type:varchar(50);not null;default:'送簽中'" json:"approval_status"`
	SoftDeleteModel

	Applicant   *Employee          `gorm:"foreignKey:ApplicantUID;references:UID" json:"applicant,omitempty"`
	Approvals   []OutingApproval   `gorm:"foreignKey:FormID;references:FormID"    json:"approvals,omitempty"`
	Attachments []OutingAttachment `gorm:"foreignKey:FormID;references:FormID"    json:"attachments,omitempty"`
}

// TableName 指定表名
func (OutingForm) TableName() string { return "outing_forms" }

// OutingApproval 外出单签核纪录 — 对应 outing_approvals（只追加）
type OutingApproval struct {
	ApprovalID  int64     `gorm:"primaryKey;autoIncrement"  json:"approval_id"`
	FormID      string    `gorm:"type:uuid;not null"        json:"form_id"`
	ApproverUID string    `gorm:"type:varchar(50);not null" json:"approver_uid"`
	Decision    string    `gorm:"type:varchar(20);not null" json:"decision"` // approve | reject
	Comment     string    `gorm:"type:varchar(500)"         json:"comment,omitempty"`
	ResultState string    `gorm:"type:varchar(50)"          json:"result_state"` // BPM 返回的状态
	ApprovedAt  time.Time `gorm:"not null"                  json:"approved_at"`

	Approver *Employee `gorm:"foreignKey:ApproverUID;references:UID" json:"approver,omitempty"`
}

// TableName 指定表名
func (OutingApproval) TableName() string { return "outing_approvals" }

// OutingAttachment 外出单附件（仅元数据，文件位于 FTP）— 对应 outing_attachments
type OutingAttachment struct {
	AttachmentID int64     `gorm:"primaryKey;autoIncrement"   json:"attachment_id"`
	FormID       string    `gorm:"type:uuid;not null"         json:"form_id"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FTPPath      string    `gorm:"column:ftp_path;type:varchar(500);not null" json:"ftp_path"`
	SizeBytes    int64     `gorm:"not null;default:0"         json:"size_bytes"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (OutingAttachment) TableName() string { return "outing_attachments" }
