package model

// EmployeeStatus 人事在职状态
type EmployeeStatus string

const (
	EmployeeWorking   EmployeeStatus = "W" // 在職
	EmployeeSuspended EmployeeStatus = "S" // 留職停薪
	EmployeeLeft      EmployeeStatus = "X" // 離職
)

// IsActive 仅在職视为有效
func (s EmployeeStatus) IsActive() bool { return s == EmployeeWorking }

// Employee 员工人事资料 — 对应 employees
type Employee struct {
	UID        string         `gorm:"type:varchar(50);primaryKey"           json:"uid"`
	Name       string         `gorm:"type:varchar(100);not null"            json:"name"`
	Email      string         `gorm:"type:varchar(255)"                     json:"email"`
	Department string         `gorm:"type:varchar(100)"                     json:"department"`
	Title      string         `gorm:"type:varchar(100)"                     json:"title"`
	ManagerUID *string        `gorm:"type:varchar(50)"                      json:"manager_uid,omitempty"`
	Status     EmployeeStatus `gorm:"type:char(1);not null;default:'W'"     json:"status"`
	BaseModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }
