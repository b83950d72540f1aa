package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/model"
	"github.com/YuWang03/kunyu-project-sub003/internal/repository"
	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
	"github.com/YuWang03/kunyu-project-sub003/pkg/oidc"
)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo(emps ...*model.Employee) *mockEmployeeRepo {
	m := &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
	for _, e := range emps {
		m.employees[e.UID] = e
	}
	return m
}

func (m *mockEmployeeRepo) GetByUID(_ context.Context, uid string) (*model.Employee, error) {
	if e, ok := m.employees[uid]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) ListByUIDs(_ context.Context, uids []string) ([]model.Employee, error) {
	var result []model.Employee
	for _, uid := range uids {
		if e, ok := m.employees[uid]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records []model.AttendanceRecord
	err     error
}

func (m *mockAttendanceRepo) ListByEmployee(_ context.Context, uid string, from, to time.Time) ([]model.AttendanceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.EmployeeUID == uid && !r.WorkDate.Before(from) && r.WorkDate.Before(to) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WorkDate.Before(result[j].WorkDate) })
	return result, nil
}

// ── Mock OvertimeRepository ──

type mockOvertimeRepo struct {
	forms map[string]*model.OvertimeForm
}

func newMockOvertimeRepo() *mockOvertimeRepo {
	return &mockOvertimeRepo{forms: make(map[string]*model.OvertimeForm)}
}

func (m *mockOvertimeRepo) Create(_ context.Context, form *model.OvertimeForm) error {
	cp := *form
	m.forms[form.FormID] = &cp
	return nil
}

func (m *mockOvertimeRepo) GetByID(_ context.Context, id string) (*model.OvertimeForm, error) {
	if f, ok := m.forms[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOvertimeRepo) UpdateBPM(_ context.Context, id, bpmFormID, status string) error {
	if f, ok := m.forms[id]; ok {
		f.BPMFormID = bpmFormID
		f.ApprovalStatus = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockOvertimeRepo) UpdateStatus(_ context.Context, id, status string) error {
	if f, ok := m.forms[id]; ok {
		f.ApprovalStatus = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockOvertimeRepo) List(_ context.Context, filter repository.FormFilter) ([]model.OvertimeForm, int64, error) {
	var result []model.OvertimeForm
	for _, f := range m.forms {
		if filter.ApplicantUID != "" && f.ApplicantUID != filter.ApplicantUID {
			continue
		}
		if filter.Status != "" && f.ApprovalStatus != filter.Status {
			continue
		}
		if !filter.From.IsZero() && f.StartAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !f.StartAt.Before(filter.To) {
			continue
		}
		result = append(result, *f)
	}
	return result, int64(len(result)), nil
}

// ── Mock OutingRepository ──

type mockOutingRepo struct {
	forms       map[string]*model.OutingForm
	approvals   []model.OutingApproval
	attachments []model.OutingAttachment
	appendErr   error
}

func newMockOutingRepo() *mockOutingRepo {
	return &mockOutingRepo{forms: make(map[string]*model.OutingForm)}
}

func (m *mockOutingRepo) Create(_ context.Context, form *model.OutingForm) error {
	cp := *form
	cp.Attachments = nil
	m.forms[form.FormID] = &cp
	for i := range form.Attachments {
		form.Attachments[i].FormID = form.FormID
		form.Attachments[i].AttachmentID = int64(len(m.attachments) + 1)
		m.attachments = append(m.attachments, form.Attachments[i])
	}
	return nil
}

func (m *mockOutingRepo) GetByID(_ context.Context, id string) (*model.OutingForm, error) {
	if f, ok := m.forms[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOutingRepo) UpdateBPM(_ context.Context, id, bpmFormID, status string) error {
	if f, ok := m.forms[id]; ok {
		f.BPMFormID = bpmFormID
		f.ApprovalStatus = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockOutingRepo) UpdateStatus(_ context.Context, id, status string) error {
	if f, ok := m.forms[id]; ok {
		f.ApprovalStatus = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockOutingRepo) List(_ context.Context, filter repository.FormFilter) ([]model.OutingForm, int64, error) {
	var result []model.OutingForm
	for _, f := range m.forms {
		if filter.ApplicantUID != "" && f.ApplicantUID != filter.ApplicantUID {
			continue
		}
		if filter.Type != "" && string(f.Type) != filter.Type {
			continue
		}
		if filter.Status != "" && f.ApprovalStatus != filter.Status {
			continue
		}
		result = append(result, *f)
	}
	return result, int64(len(result)), nil
}

func (m *mockOutingRepo) AppendApproval(_ context.Context, approval *model.OutingApproval) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	approval.ApprovalID = int64(len(m.approvals) + 1)
	m.approvals = append(m.approvals, *approval)
	return nil
}

func (m *mockOutingRepo) ListApprovals(_ context.Context, formID string) ([]model.OutingApproval, error) {
	var result []model.OutingApproval
	for _, a := range m.approvals {
		if a.FormID == formID {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ApprovedAt.Before(result[j].ApprovedAt) })
	return result, nil
}

func (m *mockOutingRepo) ListAttachments(_ context.Context, formID string) ([]model.OutingAttachment, error) {
	var result []model.OutingAttachment
	for _, a := range m.attachments {
		if a.FormID == formID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock 外部系统 ──

type mockEngine struct {
	submitErr  error
	signErr    error
	statusErr  error
	status     string
	submitted  []string // formCode
	signed     []string // decision
	lastFields map[string]interface{}
}

func (m *mockEngine) SubmitForm(_ context.Context, formCode, _ string, fields map[string]interface{}) (string, string, error) {
	if m.submitErr != nil {
		return "", "", m.submitErr
	}
	m.submitted = append(m.submitted, formCode)
	m.lastFields = fields
	return "BPM-" + formCode, "簽核中", nil
}

func (m *mockEngine) GetStatus(_ context.Context, _ string) (string, error) {
	if m.statusErr != nil {
		return "", m.statusErr
	}
	return m.status, nil
}

func (m *mockEngine) Sign(_ context.Context, _, _, decision, _ string) (string, error) {
	if m.signErr != nil {
		return "", m.signErr
	}
	m.signed = append(m.signed, decision)
	if decision == "reject" {
		return "已駁回", nil
	}
	return "已核准", nil
}

type mockIdP struct {
	token *oidc.TokenResponse
	err   error
}

func (m *mockIdP) PasswordGrant(_ context.Context, _, _ string) (*oidc.TokenResponse, error) {
	return m.token, m.err
}

func (m *mockIdP) RefreshGrant(_ context.Context, _ string) (*oidc.TokenResponse, error) {
	return m.token, m.err
}

type mockVerifier struct {
	claims *jwt.Claims
	err    error
}

func (m *mockVerifier) Verify(_ string) (*jwt.Claims, error) {
	return m.claims, m.err
}

type mockBlacklist struct {
	entries map[string]time.Duration
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string]time.Duration)
	}
	m.entries[jti] = ttl
	return nil
}

// ── 测试夹具 ──

var (
	testBPMConfig = &config.BPMConfig{OvertimeFormCode: "OVERTIME", OutingFormCode: "OUTING"}
	testFTPConfig = &config.FTPConfig{Host: "ftp.example.com", Port: 21, Username: "hr", BasePath: "/attachments"}
	staff         = Operator{UID: "E001", Roles: []string{"employee"}}
	manager       = Operator{UID: "M001", Roles: []string{"employee", RoleManager}}
)

func testLogger() *zap.Logger { return zap.NewNop() }

func strPtr(s string) *string { return &s }
