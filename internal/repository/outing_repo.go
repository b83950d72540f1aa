package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/internal/model"
)

// OutingRepository 外出单访问接口。
// 签核纪录只提供追加与读取，不提供修改或删除。
type OutingRepository interface {
	Create(ctx context.Context, form *model.OutingForm) error
	GetByID(ctx context.Context, id string) (*model.OutingForm, error)
	UpdateBPM(ctx context.Context, id, bpmFormID, status string) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter FormFilter) ([]model.OutingForm, int64, error)

	AppendApproval(ctx context.Context, approval *model.OutingApproval) error
	ListApprovals(ctx context.Context, formID string) ([]model.OutingApproval, error)
	ListAttachments(ctx context.Context, formID string) ([]model.OutingAttachment, error)
}

type outingRepo struct {
	db *gorm.DB
}

// NewOutingRepo 创建 OutingRepository 实例
func NewOutingRepo(db *gorm.DB) OutingRepository {
	return &outingRepo{db: db}
}

// Create 与附件一并写入
func (r *outingRepo) Create(ctx context.Context, form *model.OutingForm) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attachments := form.Attachments
		form.Attachments = nil
		if err := tx.Omit("Approvals", "Applicant").Create(form).Error; err != nil {
			return err
		}
		for i := range attachments {
			attachments[i].FormID = form.FormID
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}
		form.Attachments = attachments
		return nil
	})
}

func (r *outingRepo) GetByID(ctx context.Context, id string) (*model.OutingForm, error) {
	var form model.OutingForm
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Where("form_id = ?", id).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *outingRepo) UpdateBPM(ctx context.Context, id, bpmFormID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.OutingForm{}).
		Where("form_id = ?", id).
		Updates(map[string]interface{}{
			"bpm_form_id":     bpmFormID,
			"approval_status": status,
		}).Error
}

func (r *outingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.OutingForm{}).
		Where("form_id = ?", id).
		Update("approval_status", status).Error
}

func (r *outingRepo) List(ctx context.Context, filter FormFilter) ([]model.OutingForm, int64, error) {
	var forms []model.OutingForm
	var total int64

	db := filter.apply(r.db.WithContext(ctx).Model(&model.OutingForm{}))
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Applicant").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("start_at DESC").
		Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	return forms, total, nil
}

func (r *outingRepo) AppendApproval(ctx context.Context, approval *model.OutingApproval) error {
	return r.db.WithContext(ctx).Omit("Approver").Create(approval).Error
}

// ListApprovals 按签核时间升序（同一时间按写入顺序）
func (r *outingRepo) ListApprovals(ctx context.Context, formID string) ([]model.OutingApproval, error) {
	var approvals []model.OutingApproval
	err := r.db.WithContext(ctx).
		Preload("Approver").
		Where("form_id = ?", formID).
		Order("approved_at ASC, approval_id ASC").
		Find(&approvals).Error
	return approvals, err
}

func (r *outingRepo) ListAttachments(ctx context.Context, formID string) ([]model.OutingAttachment, error) {
	var attachments []model.OutingAttachment
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("attachment_id ASC").
		Find(&attachments).Error
	return attachments, err
}
