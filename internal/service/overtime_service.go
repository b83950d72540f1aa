package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/model"
	"github.com/YuWang03/kunyu-project-sub003/internal/repository"
)

// ── 加班模块业务错误 ──

var (
	ErrOvertimeInvalidTime = errors.New("加班结束时间须晚于开始时间（不可跨日）")
	ErrOvertimeTooShort    = errors.New("加班时数不足 0.5 小时")
	ErrOvertimeTooLong     = errors.New("单次加班不能超过 12 小时")
)

// MaxOvertimeHours 单张加班单时数上限
const MaxOvertimeHours = 12.0

// ComputeOvertimeHours 以半小时为单位向下取整。
// 结束须晚于开始，结果须大于 0 且不超过 12。
func ComputeOvertimeHours(start, end time.Time) (float64, error) {
	if !end.After(start) {
		return 0, ErrOvertimeInvalidTime
	}
	halfHours := math.Floor(end.Sub(start).Minutes() / 30)
	hours := halfHours / 2
	if hours <= 0 {
		return 0, ErrOvertimeTooShort
	}
	if hours > MaxOvertimeHours {
		return 0, ErrOvertimeTooLong
	}
	return hours, nil
}

// OvertimeService 加班单业务接口
type OvertimeService interface {
	Submit(ctx context.Context, op Operator, req *dto.SubmitOvertimeRequest) (*dto.OvertimeRecord, error)
	List(ctx context.Context, op Operator, req *dto.OvertimeListRequest) ([]dto.OvertimeRecord, int64, error)
	Get(ctx context.Context, op Operator, id string) (*dto.OvertimeRecord, error)
	Approve(ctx context.Context, op Operator, id string, req *dto.ApproveFormRequest) (*dto.FormStatusResponse, error)
	SyncStatus(ctx context.Context, op Operator, id string) (*dto.FormStatusResponse, error)
}

type overtimeService struct {
	cfg    *config.BPMConfig
	repo   *repository.Repository
	engine FormEngine
	logger *zap.Logger
	now    func() time.Time
}

// NewOvertimeService 创建 OvertimeService 实例
func NewOvertimeService(cfg *config.BPMConfig, repo *repository.Repository, engine FormEngine, logger *zap.Logger) OvertimeService {
	return &overtimeService{cfg: cfg, repo: repo, engine: engine, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// Submit — 建立加班单并送至 BPM
// ═══════════════════════════════════════════════════════════

func (s *overtimeService) Submit(ctx context.Context, op Operator, req *dto.SubmitOvertimeRequest) (*dto.OvertimeRecord, error) {
	start, err := dto.ParseDateClock(req.Date, req.StartTime)
	if err != nil {
		return nil, ErrOvertimeInvalidTime
	}
	end, err := dto.ParseDateClock(req.Date, req.EndTime)
	if err != nil {
		return nil, ErrOvertimeInvalidTime
	}
	hours, err := ComputeOvertimeHours(start, end)
	if err != nil {
		return nil, err
	}

	form := &model.OvertimeForm{
		FormID:         uuid.NewString(),
		ApplicantUID:   op.UID,
		StartAt:        start,
		EndAt:          end,
		Hours:          hours,
		Reason:         req.Reason,
		NotifyEmail:    req.NotifyEmail,
		ApprovalStatus: StatusSubmitting,
	}
	if err := s.repo.Overtime.Create(ctx, form); err != nil {
		s.logger.Error("创建加班单失败", zap.Error(err))
		return nil, err
	}

	fields := map[string]interface{}{
		"date":         req.Date,
		"start_time":   req.StartTime,
		"end_time":     req.EndTime,
		"hours":        hours,
		"reason":       req.Reason,
		"notify_email": req.NotifyEmail,
		"local_id":     form.FormID,
	}
	bpmID, status, err := s.engine.SubmitForm(ctx, s.cfg.OvertimeFormCode, op.UID, fields)
	if err != nil {
		s.logger.Error("加班单送签失败", zap.String("form_id", form.FormID), zap.Error(err))
		if uerr := s.repo.Overtime.UpdateStatus(ctx, form.FormID, StatusSubmitFailed); uerr != nil {
			s.logger.Error("更新加班单状态失败", zap.String("form_id", form.FormID), zap.Error(uerr))
		}
		return nil, wrapEngineError(err)
	}
	if status == "" {
		status = StatusSubmitting
	}
	if err := s.repo.Overtime.UpdateBPM(ctx, form.FormID, bpmID, status); err != nil {
		s.logger.Error("回写 BPM 单号失败", zap.String("form_id", form.FormID), zap.String("bpm_form_id", bpmID), zap.Error(err))
		return nil, err
	}
	form.BPMFormID = bpmID
	form.ApprovalStatus = status
	form.CreatedAt = s.now()

	s.logger.Info("加班单已送签",
		zap.String("form_id", form.FormID),
		zap.String("bpm_form_id", bpmID),
		zap.Float64("hours", hours),
	)
	rec := toOvertimeRecord(form)
	return &rec, nil
}

// ═══════════════════════════════════════════════════════════
// List / Get
// ═══════════════════════════════════════════════════════════

func (s *overtimeService) List(ctx context.Context, op Operator, req *dto.OvertimeListRequest) ([]dto.OvertimeRecord, int64, error) {
	from, to, err := req.Range(s.now())
	if err != nil || !to.After(from) {
		return nil, 0, ErrInvalidDateRange
	}
	offset, limit := normalizePage(req.GetOffset(), req.GetPageSize())
	filter := repository.FormFilter{
		From:   from,
		To:     to,
		Status: req.Status,
		Offset: offset,
		Limit:  limit,
	}
	if !op.IsManager() {
		filter.ApplicantUID = op.UID
	}

	forms, total, err := s.repo.Overtime.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询加班单列表失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.OvertimeRecord, 0, len(forms))
	for i := range forms {
		list = append(list, toOvertimeRecord(&forms[i]))
	}
	return list, total, nil
}

func (s *overtimeService) Get(ctx context.Context, op Operator, id string) (*dto.OvertimeRecord, error) {
	form, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	rec := toOvertimeRecord(form)
	return &rec, nil
}

// ═══════════════════════════════════════════════════════════
// Approve / SyncStatus
// ═══════════════════════════════════════════════════════════

func (s *overtimeService) Approve(ctx context.Context, op Operator, id string, req *dto.ApproveFormRequest) (*dto.FormStatusResponse, error) {
	if !op.IsManager() {
		return nil, ErrFormForbidden
	}
	form, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if form.ApplicantUID == op.UID {
		return nil, ErrSelfApproval
	}
	if form.BPMFormID == "" {
		return nil, ErrFormNotSubmitted
	}

	status, err := s.engine.Sign(ctx, form.BPMFormID, op.UID, req.Decision, req.Comment)
	if err != nil {
		s.logger.Error("BPM 签核失败", zap.String("form_id", id), zap.Error(err))
		return nil, wrapEngineError(err)
	}
	if err := s.repo.Overtime.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("更新加班单状态失败", zap.String("form_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("加班单已签核",
		zap.String("form_id", id),
		zap.String("approver", op.UID),
		zap.String("decision", req.Decision),
		zap.String("status", status),
	)
	return &dto.FormStatusResponse{ID: id, BPMFormID: form.BPMFormID, ApprovalStatus: status}, nil
}

func (s *overtimeService) SyncStatus(ctx context.Context, op Operator, id string) (*dto.FormStatusResponse, error) {
	form, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if form.BPMFormID == "" {
		return nil, ErrFormNotSubmitted
	}

	status, err := s.engine.GetStatus(ctx, form.BPMFormID)
	if err != nil {
		s.logger.Error("查询 BPM 状态失败", zap.String("form_id", id), zap.Error(err))
		return nil, wrapEngineError(err)
	}
	if status != form.ApprovalStatus {
		if err := s.repo.Overtime.UpdateStatus(ctx, id, status); err != nil {
			s.logger.Error("更新加班单状态失败", zap.String("form_id", id), zap.Error(err))
			return nil, err
		}
	}
	return &dto.FormStatusResponse{ID: id, BPMFormID: form.BPMFormID, ApprovalStatus: status}, nil
}

// load 读取表单并检查查看权限
func (s *overtimeService) load(ctx context.Context, op Operator, id string) (*model.OvertimeForm, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrFormNotFound
	}
	form, err := s.repo.Overtime.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		s.logger.Error("查询加班单失败", zap.String("form_id", id), zap.Error(err))
		return nil, err
	}
	if !op.CanView(form.ApplicantUID) {
		return nil, ErrFormForbidden
	}
	return form, nil
}

// ── 转换 ──

func toOvertimeRecord(form *model.OvertimeForm) dto.OvertimeRecord {
	rec := dto.OvertimeRecord{
		ID:             form.FormID,
		ApplicantUID:   form.ApplicantUID,
		Date:           dto.FormatDate(form.StartAt),
		StartTime:      dto.FormatClock(form.StartAt),
		EndTime:        dto.FormatClock(form.EndAt),
		Hours:          form.Hours,
		Reason:         form.Reason,
		NotifyEmail:    form.NotifyEmail,
		BPMFormID:      form.BPMFormID,
		ApprovalStatus: form.ApprovalStatus,
		CreatedAt:      formatTimestamp(form.CreatedAt),
	}
	if form.Applicant != nil {
		rec.ApplicantName = form.Applicant.Name
	}
	return rec
}
