package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/internal/model"
)

// EmployeeRepository 员工人事资料访问接口
type EmployeeRepository interface {
	GetByUID(ctx context.Context, uid string) (*model.Employee, error)
	ListByUIDs(ctx context.Context, uids []string) ([]model.Employee, error)
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) GetByUID(ctx context.Context, uid string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) ListByUIDs(ctx context.Context, uids []string) ([]model.Employee, error) {
	var emps []model.Employee
	if len(uids) == 0 {
		return emps, nil
	}
	err := r.db.WithContext(ctx).
		Where("uid IN ?", uids).
		Find(&emps).Error
	return emps, err
}
