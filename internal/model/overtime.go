package model

import "time"

// OvertimeForm 加班单 — 对应 overtime_forms
type OvertimeForm struct {
	FormID         string    `gorm:"type:uuid;primaryKey"                        json:"form_id"`
	ApplicantUID   string    `gorm:"type:varchar(50);not null"                   json:"applicant_uid"`
	StartAt        time.Time `gorm:"not null"                                    json:"start_at"`
	EndAt          time.Time `gorm:"not null"                                    json:"end_at"`
	Hours          float64   `gorm:"type:numeric(4,1);not null"                  json:"hours"`
	Reason         string    `gorm:"type:varchar(500);not null"                  json:"reason"`
	NotifyEmail    string    `gorm:"type:varchar(255)"                           json:"notify_email,omitempty"`
	BPMFormID      string    `gorm:"column:bpm_form_id;type:varchar(64)"         json:"bpm_form_id"`
	ApprovalStatus string    `gorm:"type:varchar(50);not null;default:'送簽中'"     json:"approval_status"`
	SoftDeleteModel

	Applicant *Employee `gorm:"foreignKey:ApplicantUID;references:UID" json:"applicant,omitempty"`
}

// TableName 指定表名
func (OvertimeForm) TableName() string { return "overtime_forms" }
