package contract

import (
	"errors"
	"fmt"
)

// 最小错误分类（供上层策略判定与退出码映射）。
var (
	// ErrInput: 密文来源不可读、缺失、编码非法或内容为空。
	ErrInput = errors.New("input error")
	// ErrEstimation: 未找到重复 gram，无法估计密钥长度。
	ErrEstimation = errors.New("key length estimation failed")
	// ErrDetection: 语言识别结果为 Unknown，无可用字母表/概率表。
	ErrDetection = errors.New("language detection failed")
	// ErrDegenerateInput: 密文短于 gram 长度（根因同 ErrEstimation，errors.Is 两者皆命中）。
	ErrDegenerateInput = fmt.Errorf("degenerate input: %w", ErrEstimation)
	// ErrInvalidInput: 参数违例（gram 长度、列数等）。
	ErrInvalidInput = errors.New("invalid input")
)

// Stage: 分析流水线阶段名。
type Stage string

const (
	StageRead       Stage = "read"
	StageSanitize   Stage = "sanitize"
	StageDetect     Stage = "detect"
	StageProfile    Stage = "profile"
	StageLocate     Stage = "locate"
	StageEstimate   Stage = "estimate"
	StagePartition  Stage = "partition"
	StageScore      Stage = "score"
	StageSynthesize Stage = "synthesize"
	StageFormat     Stage = "format"
	StageWrite      Stage = "write"
)

// StageError 标注失败阶段；Unwrap 保留哨兵错误以便 errors.Is 判定。
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e == nil || e.Err == nil {
		return "<nil>"
	}
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WrapStage 将 err 包装为 *StageError；err 为 nil 时返回 nil。
func WrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf 返回错误链上第一个 StageError 的阶段；无则为空。
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
