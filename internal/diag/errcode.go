package diag

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"vigcrack/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown    Code = "unknown"
	CodeInput      Code = "input"
	CodeEstimation Code = "estimation"
	CodeDegenerate Code = "degenerate"
	CodeDetection  Code = "detection"
	CodeInvariant  Code = "invariant"
	CodeCancel     Code = "cancel"
	CodeIO         Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	// 退化输入同时命中 ErrEstimation，需先判
	if errors.Is(err, contract.ErrDegenerateInput) {
		return CodeDegenerate
	}
	if errors.Is(err, contract.ErrEstimation) {
		return CodeEstimation
	}
	if errors.Is(err, contract.ErrDetection) {
		return CodeDetection
	}
	if errors.Is(err, contract.ErrInput) {
		return CodeInput
	}
	if errors.Is(err, contract.ErrInvalidInput) {
		return CodeInvariant
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
