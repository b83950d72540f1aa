package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/internal/model"
)

// OvertimeRepository 加班单访问接口
type OvertimeRepository interface {
	Create(ctx context.Context, form *model.OvertimeForm) error
	GetByID(ctx context.Context, id string) (*model.OvertimeForm, error)
	UpdateBPM(ctx context.Context, id, bpmFormID, status string) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter FormFilter) ([]model.OvertimeForm, int64, error)
}

type overtimeRepo struct {
	db *gorm.DB
}

// NewOvertimeRepo 创建 OvertimeRepository 实例
func NewOvertimeRepo(db *gorm.DB) OvertimeRepository {
	return &overtimeRepo{db: db}
}

func (r *overtimeRepo) Create(ctx context.Context, form *model.OvertimeForm) error {
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *overtimeRepo) GetByID(ctx context.Context, id string) (*model.OvertimeForm, error) {
	var form model.OvertimeForm
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Where("form_id = ?", id).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *overtimeRepo) UpdateBPM(ctx context.Context, id, bpmFormID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.OvertimeForm{}).
		Where("form_id = ?", id).
		Updates(map[string]interface{}{
			"bpm_form_id":     bpmFormID,
			"approval_status": status,
		}).Error
}

func (r *overtimeRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.OvertimeForm{}).
		Where("form_id = ?", id).
		Update("approval_status", status).Error
}

func (r *overtimeRepo) List(ctx context.Context, filter FormFilter) ([]model.OvertimeForm, int64, error) {
	var forms []model.OvertimeForm
	var total int64

	db := filter.apply(r.db.WithContext(ctx).Model(&model.OvertimeForm{}))

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
