package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/YuWang03/kunyu-project-sub003/pkg/bpm"
	pkgerrors "github.com/YuWang03/kunyu-project-sub003/pkg/errors"
)

// ── 表单（加班 / 外出）共用 ──

// 本地维护的签核状态；其余状态原样取自 BPM
const (
	StatusSubmitting   = "送簽中"
	StatusSubmitFailed = "送簽失敗"
)

var (
	ErrFormNotFound     = errors.New("表单不存在")
	ErrFormForbidden    = errors.New("无权操作该表单")
	ErrFormNotSubmitted = errors.New("表单尚未送至 BPM")
	ErrSelfApproval     = errors.New("不能签核本人的表单")
)

// wrapEngineError BPM 业务拒绝原样返回，其余视为外部系统不可用
func wrapEngineError(err error) error {
	var apiErr *bpm.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return err
	}
	return fmt.Errorf("%w: %v", pkgerrors.ErrUpstreamUnavailable, err)
}

// normalizePage 列表查询的 offset / limit
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	return offset, limit
}

// formatTimestamp 表单时间戳显示
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
