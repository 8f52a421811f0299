// Package cracker 将语言识别、Kasiski 周期估计与逐列频率分析串为单一纯函数流水线。
package cracker

import (
	"fmt"
	"time"

	"vigcrack/pkg/contract"
	"vigcrack/pkg/frequency"
	"vigcrack/pkg/kasiski"
	"vigcrack/pkg/language"
)

// TraceFunc 在每个阶段结束后回调（err 为该阶段错误，可为 nil）。
type TraceFunc func(stage contract.Stage, start time.Time, err error)

// Options: 单次分析的显式参数。
type Options struct {
	// GramLength: 重复检测 gram 长度；<=0 使用 kasiski.DefaultGramLength。
	GramLength int
	// Language: 显式语言；Unknown 表示交给 Detector 识别。
	Language language.Language
	// KeyLength: 显式密钥长度；<=0 表示由 Kasiski 估计。
	KeyLength int
	// Table/Detector 为空时使用内置默认。
	Table    *language.Table
	Detector *language.Detector
	// Trace 可选。
	Trace TraceFunc
}

// Result: 分析产物。失败时不返回任何部分结果。
type Result struct {
	Language         language.Language
	LanguageDetected bool
	// Top: 识别所依据的最高频字符（显式语言时为 0）。
	Top       rune
	Distances []int
	KeyLength int
	Columns   [][]rune
	Scores    [][]float64
	Key       string
}

// Crack 执行：识别语言 → 取 Profile → 定位重复 → 估计周期 → 分列 → 打分 → 合成密钥。
// 任一阶段失败返回 *contract.StageError，其 Unwrap 链含对应哨兵错误。
func Crack(text []rune, opts Options) (Result, error) {
	table := opts.Table
	if table == nil {
		table = language.DefaultTable()
	}
	det := opts.Detector
	if det == nil {
		det = language.NewDetector()
	}
	gramLen := opts.GramLength
	if gramLen <= 0 {
		gramLen = kasiski.DefaultGramLength
	}
	var res Result

	// 语言
	start := time.Now()
	lang := opts.Language
	if lang == language.Unknown {
		var top rune
		lang, top = det.Detect(text)
		res.LanguageDetected = true
		res.Top = top
		if lang == language.Unknown {
			err := fmt.Errorf("%w: most frequent symbol %q matches no language", contract.ErrDetection, top)
			return Result{}, stageFail(opts.Trace, contract.StageDetect, start, err)
		}
	}
	trace(opts.Trace, contract.StageDetect, start, nil)
	res.Language = lang

	start = time.Now()
	profile, err := table.Profile(lang)
	if err != nil {
		return Result{}, stageFail(opts.Trace, contract.StageProfile, start, err)
	}
	trace(opts.Trace, contract.StageProfile, start, nil)

	// 周期
	if opts.KeyLength > 0 {
		res.KeyLength = opts.KeyLength
	} else {
		start = time.Now()
		dists, err := kasiski.LocateRepeats(text, gramLen)
		if err != nil {
			return Result{}, stageFail(opts.Trace, contract.StageLocate, start, err)
		}
		trace(opts.Trace, contract.StageLocate, start, nil)
		res.Distances = dists

		start = time.Now()
		k, err := kasiski.EstimateKeyLength(dists)
		if err != nil {
			return Result{}, stageFail(opts.Trace, contract.StageEstimate, start, err)
		}
		trace(opts.Trace, contract.StageEstimate, start, nil)
		res.KeyLength = k
	}

	// 分列
	start = time.Now()
	if len(text) < res.KeyLength {
		err := fmt.Errorf("%w: %d symbols for key length %d", contract.ErrInvalidInput, len(text), res.KeyLength)
		return Result{}, stageFail(opts.Trace, contract.StagePartition, start, err)
	}
	cols, err := frequency.Partition(text, res.KeyLength)
	if err != nil {
		return Result{}, stageFail(opts.Trace, contract.StagePartition, start, err)
	}
	trace(opts.Trace, contract.StagePartition, start, nil)
	res.Columns = cols

	// 打分
	start = time.Now()
	scores := make([][]float64, len(cols))
	for i, c := range cols {
		scores[i] = frequency.Score(c, profile)
	}
	trace(opts.Trace, contract.StageScore, start, nil)
	res.Scores = scores

	start = time.Now()
	key, err := frequency.SynthesizeKey(scores, profile)
	if err != nil {
		return Result{}, stageFail(opts.Trace, contract.StageSynthesize, start, err)
	}
	trace(opts.Trace, contract.StageSynthesize, start, nil)
	res.Key = key
	return res, nil
}

func trace(fn TraceFunc, stage contract.Stage, start time.Time, err error) {
	if fn != nil {
		fn(stage, start, err)
	}
}

func stageFail(fn TraceFunc, stage contract.Stage, start time.Time, err error) error {
	trace(fn, stage, start, err)
	return contract.WrapStage(stage, err)
}
