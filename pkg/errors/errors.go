package errors

import "errors"

// ── 跨模块共享的业务错误 ──

var (
	// ErrUpstreamUnavailable 外部系统（BPM、身份提供者）无法连线
	ErrUpstreamUnavailable = errors.New("外部系统暂时无法连线，请稍后再试")
	// ErrEmployeeInactive 人事状态非在职
	ErrEmployeeInactive = errors.New("员工非在职状态")
)
