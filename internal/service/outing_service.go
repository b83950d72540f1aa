package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/model"
	"github.com/YuWang03/kunyu-project-sub003/internal/repository"
)

// ── 外出模块业务错误 ──

var (
	ErrOutingInvalidTime = errors.New("外出结束时间须晚于开始时间")
	ErrOutingInvalidType = errors.New("外出类型无效")
)

// OutingService 外出（出差）单业务接口
type OutingService interface {
	Submit(ctx context.Context, op Operator, req *dto.SubmitOutingRequest) (*dto.OutingDetail, error)
	List(ctx context.Context, op Operator, req *dto.OutingListRequest) ([]dto.OutingListItem, int64, error)
	Get(ctx context.Context, op Operator, id string) (*dto.OutingDetail, error)
	Approve(ctx context.Context, op Operator, id string, req *dto.ApproveFormRequest) (*dto.FormStatusResponse, error)
	SyncStatus(ctx context.Context, op Operator, id string) (*dto.FormStatusResponse, error)
}

type outingService struct {
	cfg    *config.BPMConfig
	ftp    *config.FTPConfig
	repo   *repository.Repository
	engine FormEngine
	logger *zap.Logger
	now    func() time.Time
}

// NewOutingService 创建 OutingService 实例
func NewOutingService(cfg *config.BPMConfig, ftp *config.FTPConfig, repo *repository.Repository, engine FormEngine, logger *zap.Logger) OutingService {
	return &outingService{cfg: cfg, ftp: ftp, repo: repo, engine: engine, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// Submit — 建立外出单（含附件元数据）并送至 BPM
// ═══════════════════════════════════════════════════════════

func (s *outingService) Submit(ctx context.Context, op Operator, req *dto.SubmitOutingRequest) (*dto.OutingDetail, error) {
	outingType := model.OutingType(req.Type)
	if _, ok := model.OutingTypes[outingType]; !ok {
		return nil, ErrOutingInvalidType
	}
	start, err := dto.ParseDateClock(req.StartDate, req.StartTime)
	if err != nil {
		return nil, ErrOutingInvalidTime
	}
	end, err := dto.ParseDateClock(req.EndDate, req.EndTime)
	if err != nil {
		return nil, ErrOutingInvalidTime
	}
	if !end.After(start) {
		return nil, ErrOutingInvalidTime
	}

	form := &model.OutingForm{
		FormID:         uuid.NewString(),
		ApplicantUID:   op.UID,
		Type:           outingType,
		StartAt:        start,
		EndAt:          end,
		Location:       req.Location,
		Reason:         req.Reason,
		ApprovalStatus: StatusSubmitting,
	}
	attachmentPaths := make([]string, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		p := s.ftp.AttachmentPath(form.FormID, a.FileName)
		attachmentPaths = append(attachmentPaths, p)
		form.Attachments = append(form.Attachments, model.OutingAttachment{
			FileName:  a.FileName,
			FTPPath:   p,
			SizeBytes: a.SizeBytes,
		})
	}

	if err := s.repo.Outing.Create(ctx, form); err != nil {
		s.logger.Error("创建外出单失败", zap.Error(err))
		return nil, err
	}

	fields := map[string]interface{}{
		"type":        string(outingType),
		"type_label":  outingType.Label(),
		"start_at":    dto.FormatDateTime(start),
		"end_at":      dto.FormatDateTime(end),
		"location":    req.Location,
		"reason":      req.Reason,
		"attachments": attachmentPaths,
		"local_id":    form.FormID,
	}
	bpmID, status, err := s.engine.SubmitForm(ctx, s.cfg.OutingFormCode, op.UID, fields)
	if err != nil {
		s.logger.Error("外出单送签失败", zap.String("form_id", form.FormID), zap.Error(err))
		if uerr := s.repo.Outing.UpdateStatus(ctx, form.FormID, StatusSubmitFailed); uerr != nil {
			s.logger.Error("更新外出单状态失败", zap.String("form_id", form.FormID), zap.Error(uerr))
		}
		return nil, wrapEngineError(err)
	}
	if status == "" {
		status = StatusSubmitting
	}
	if err := s.repo.Outing.UpdateBPM(ctx, form.FormID, bpmID, status); err != nil {
		s.logger.Error("回写 BPM 单号失败", zap.String("form_id", form.FormID), zap.String("bpm_form_id", bpmID), zap.Error(err))
		return nil, err
	}
	form.BPMFormID = bpmID
	form.ApprovalStatus = status
	form.CreatedAt = s.now()

	s.logger.Info("外出单已送签",
		zap.String("form_id", form.FormID),
		zap.String("bpm_form_id", bpmID),
		zap.String("type", string(outingType)),
		zap.Int("attachments", len(form.Attachments)),
	)
	return s.toDetail(form, nil, form.Attachments), nil
}

// ═══════════════════════════════════════════════════════════
// List / Get
// ═══════════════════════════════════════════════════════════

func (s *outingService) List(ctx context.Context, op Operator, req *dto.OutingListRequest) ([]dto.OutingListItem, int64, error) {
	from, to, err := req.Range(s.now())
	if err != nil || !to.After(from) {
		return nil, 0, ErrInvalidDateRange
	}
	offset, limit := normalizePage(req.GetOffset(), req.GetPageSize())
	filter := repository.FormFilter{
		From:   from,
		To:     to,
		Status: req.Status,
		Type:   req.Type,
		Offset: offset,
		Limit:  limit,
	}
	if !op.IsManager() {
		filter.ApplicantUID = op.UID
	}

	forms, total, err := s.repo.Outing.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询外出单列表失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.OutingListItem, 0, len(forms))
	for i := range forms {
		list = append(list, toOutingListItem(&forms[i]))
	}
	return list, total, nil
}

func (s *outingService) Get(ctx context.Context, op Operator, id string) (*dto.OutingDetail, error) {
	form, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	approvals, err := s.repo.Outing.ListApprovals(ctx, id)
	if err != nil {
		s.logger.Error("查询签核历程失败", zap.String("form_id", id), zap.Error(err))
		return nil, err
	}
	attachments, err := s.repo.Outing.ListAttachments(ctx, id)
	if err != nil {
		s.logger.Error("查询附件失败", zap.String("form_id", id), zap.Error(err))
		return nil, err
	}
	return s.toDetail(form, approvals, attachments), nil
}

// ═══════════════════════════════════════════════════════════
// Approve — BPM 签核后追加签核纪录
// ═══════════════════════════════════════════════════════════

func (s *outingService) Approve(ctx context.Context, op Operator, id string, req *dto.ApproveFormRequest) (*dto.FormStatusResponse, error) {
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

	approval := &model.OutingApproval{
		FormID:      id,
		ApproverUID: op.UID,
		Decision:    req.Decision,
		Comment:     req.Comment,
		ResultState: status,
		ApprovedAt:  s.now(),
	}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Outing.AppendApproval(ctx, approval); err != nil {
			return err
		}
		return tx.Outing.UpdateStatus(ctx, id, status)
	})
	if err != nil {
		s.logger.Error("写入签核纪录失败", zap.String("form_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("外出单已签核",
		zap.String("form_id", id),
		zap.String("approver", op.UID),
		zap.String("decision", req.Decision),
		zap.String("status", status),
	)
	return &dto.FormStatusResponse{ID: id, BPMFormID: form.BPMFormID, ApprovalStatus: status}, nil
}

func (s *outingService) SyncStatus(ctx context.Context, op Operator, id string) (*dto.FormStatusResponse, error) {
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
		if err := s.repo.Outing.UpdateStatus(ctx, id, status); err != nil {
			s.logger.Error("更新外出单状态失败", zap.String("form_id", id), zap.Error(err))
			return nil, err
		}
	}
	return &dto.FormStatusResponse{ID: id, BPMFormID: form.BPMFormID, ApprovalStatus: status}, nil
}

// load 读取表单并检查查看权限
func (s *outingService) load(ctx context.Context, op Operator, id string) (*model.OutingForm, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrFormNotFound
	}
	form, err := s.repo.Outing.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		s.logger.Error("查询外出单失败", zap.String("form_id", id), zap.Error(err))
		return nil, err
	}
	if !op.CanView(form.ApplicantUID) {
		return nil, ErrFormForbidden
	}
	return form, nil
}

// ── 转换 ──

func toOutingListItem(form *model.OutingForm) dto.OutingListItem {
	item := dto.OutingListItem{
		ID:             form.FormID,
		Type:           string(form.Type),
		TypeLabel:      form.Type.Label(),
		ApplicantUID:   form.ApplicantUID,
		StartAt:        dto.FormatDateTime(form.StartAt),
		EndAt:          dto.FormatDateTime(form.EndAt),
		Location:       form.Location,
		ApprovalStatus: form.ApprovalStatus,
		CreatedAt:      formatTimestamp(form.CreatedAt),
	}
	if form.Applicant != nil {
		item.ApplicantName = form.Applicant.Name
	}
	return item
}

func (s *outingService) toDetail(form *model.OutingForm, approvals []model.OutingApproval, attachments []model.OutingAttachment) *dto.OutingDetail {
	detail := &dto.OutingDetail{
		OutingListItem: toOutingListItem(form),
		Reason:         form.Reason,
		BPMFormID:      form.BPMFormID,
		Approvals:      make([]dto.ApprovalEntry, 0, len(approvals)),
		Attachments:    make([]dto.AttachmentResponse, 0, len(attachments)),
	}
	for _, a := range approvals {
		entry := dto.ApprovalEntry{
			ApproverUID: a.ApproverUID,
			Decision:    a.Decision,
			Comment:     a.Comment,
			ResultState: a.ResultState,
			ApprovedAt:  dto.FormatDateTime(a.ApprovedAt),
		}
		if a.Approver != nil {
			entry.ApproverName = a.Approver.Name
		}
		detail.Approvals = append(detail.Approvals, entry)
	}
	for _, a := range attachments {
		detail.Attachments = append(detail.Attachments, dto.AttachmentResponse{
			FileName:  a.FileName,
			Path:      a.FTPPath,
			URL:       s.ftp.AttachmentURL(a.FTPPath),
			SizeBytes: a.SizeBytes,
		})
	}
	return detail
}
