package pipeline

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"vigcrack/internal/diag"
	"vigcrack/pkg/contract"
	"vigcrack/pkg/cracker"
)

// - 串行：逐输入 Reader → Sanitizer → Cracker → Formatter → Writer；组件均为同步实现。
// - 首错即停：任一输入失败立即返回该错误，不输出部分密钥。
// - 多输入判定：读取前由 Reader 声明（contract.MultiInput）；否则按 roots 数量。多输入时文本格式带 FileID 前缀。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader    contract.Reader
	Sanitizer contract.Sanitizer
	Formatter contract.Formatter
	Writer    contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Inputs []string
	// Analysis 原样传给 cracker.Crack；Trace 由本层接管。
	Analysis cracker.Options
}

// Summary: 运行汇总。
type Summary struct {
	Files int
	Keys  map[contract.FileID]string
}

type pending struct {
	id   contract.FileID
	text []rune
}

// Run 执行完整流水线；logger 可为 nil。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) error {
	_, err := RunSummary(ctx, comp, set, logger)
	return err
}

// RunSummary 同 Run，并返回每个输入恢复出的密钥。
func RunSummary(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Summary, error) {
	sum := Summary{Keys: map[contract.FileID]string{}}
	if err := sanity(comp); err != nil {
		return sum, fmt.Errorf("sanity: %w", err)
	}
	multi := isMulti(comp.Reader, set.Inputs)

	rtimer := logger.Start("reader", "iterate")
	err := comp.Reader.Iterate(ctx, set.Inputs, func(id contract.FileID, rc io.ReadCloser) error {
		text, err := sanitize(ctx, comp, logger, id, rc)
		if err != nil {
			return err
		}
		key, err := analyze(ctx, comp, set, logger, &pending{id: id, text: text}, multi)
		if err != nil {
			return err
		}
		sum.Files++
		sum.Keys[id] = key
		return nil
	})
	if err != nil {
		if contract.StageOf(err) == "" {
			// Reader 自身失败（缺失文件、stdin 混用等）
			fail(logger, "reader", err, rtimer.Since(), "")
			err = contract.WrapStage(contract.StageRead, err)
		}
		return sum, err
	}
	if sum.Files == 0 {
		err := fmt.Errorf("%w: no input files found", contract.ErrInput)
		fail(logger, "reader", err, rtimer.Since(), "")
		return sum, contract.WrapStage(contract.StageRead, err)
	}
	logger.InfoFinish("reader", "iterate", *rtimer.Since(), int64(sum.Files))
	diag.IncOp("reader", "finish", "success")
	return sum, nil
}

// isMulti 在读取任何输入之前确定本次运行是否为多输入。
func isMulti(r contract.Reader, roots []string) bool {
	if m, ok := r.(contract.MultiInput); ok {
		return m.MultiInput(roots)
	}
	return len(roots) > 1
}

func sanitize(ctx context.Context, comp Components, logger *diag.Logger, id contract.FileID, rc io.ReadCloser) ([]rune, error) {
	defer rc.Close()
	t := logger.StartWith("sanitizer", "sanitize", string(id))
	text, err := comp.Sanitizer.Sanitize(ctx, id, rc)
	if err != nil {
		fail(logger, "sanitizer", err, t.Since(), string(id))
		if term := diag.GetTerminal(); term != nil {
			term.FileStart(string(id))
			term.FileFinish(false, string(diag.Classify(err)), time.Since(*t.Since()))
		}
		return nil, contract.WrapStage(contract.StageSanitize, err)
	}
	t.Finish("sanitize", int64(len(text)))
	diag.IncOp("sanitizer", "finish", "success")
	return text, nil
}

// analyze: 单输入的分析、格式化与写出。
func analyze(ctx context.Context, comp Components, set Settings, logger *diag.Logger, p *pending, multi bool) (key string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fid := string(p.id)
	term := diag.GetTerminal()
	if term != nil {
		term.FileStart(fid)
	}
	fileStart := time.Now()
	defer func() {
		if term == nil {
			return
		}
		if err != nil {
			term.FileFinish(false, string(diag.Classify(err)), time.Since(fileStart))
			return
		}
		term.FileFinish(true, key, time.Since(fileStart))
	}()

	opts := set.Analysis
	opts.Trace = func(stage contract.Stage, start time.Time, serr error) {
		dur := time.Since(start)
		diag.ObserveDuration("cracker", string(stage), float64(dur.Microseconds())/1000.0)
		if serr != nil {
			diag.IncOp("cracker", string(stage), "error")
			return
		}
		diag.IncOp("cracker", string(stage), "success")
		logger.DebugStage("cracker", string(stage), "ok", fid, start, nil)
		if term != nil {
			term.FileStage(string(stage))
		}
	}
	ct := logger.StartWithKV("cracker", "crack", fid, map[string]string{"symbols": strconv.Itoa(len(p.text))})
	res, err := cracker.Crack(p.text, opts)
	if err != nil {
		kv := map[string]string{"stage": string(contract.StageOf(err))}
		diag.IncError("cracker", string(diag.Classify(err)))
		logger.ErrorWithKV("cracker", string(diag.Classify(err)), err.Error(), ct.Since(), fid, kv)
		return "", err
	}
	ct.FinishKV("crack", int64(res.KeyLength), map[string]string{
		"language":   res.Language.String(),
		"detected":   strconv.FormatBool(res.LanguageDetected),
		"key_length": strconv.Itoa(res.KeyLength),
		"distances":  strconv.Itoa(len(res.Distances)),
	})

	rep := contract.Report{
		FileID:           p.id,
		Language:         strings.ToLower(res.Language.String()),
		LanguageDetected: res.LanguageDetected,
		KeyLength:        res.KeyLength,
		Distances:        res.Distances,
		Key:              res.Key,
	}
	ft := logger.StartWith("formatter", "format", fid)
	r, err := comp.Formatter.Format(ctx, rep, multi)
	if err != nil {
		fail(logger, "formatter", err, ft.Since(), fid)
		return "", contract.WrapStage(contract.StageFormat, err)
	}
	ft.Finish("format", 0)
	diag.IncOp("formatter", "finish", "success")

	wt := logger.StartWith("writer", "write", fid)
	if err := comp.Writer.Write(ctx, ArtifactID(p.id, comp.Formatter.Ext()), r); err != nil {
		fail(logger, "writer", err, wt.Since(), fid)
		return "", contract.WrapStage(contract.StageWrite, err)
	}
	wt.Finish("write", 0)
	diag.IncOp("writer", "finish", "success")
	return res.Key, nil
}

// ArtifactID 将输入 ID 映射为结果工件 ID：去掉原扩展名并追加 ext。
// "in/secret.txt" + ".key.txt" → "in/secret.key.txt"。
func ArtifactID(id contract.FileID, ext string) contract.ArtifactID {
	s := string(id)
	base := s
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		base = s[i+1:]
	}
	if j := strings.LastIndexByte(base, '.'); j > 0 {
		s = s[:len(s)-len(base)+j]
	}
	return contract.ArtifactID(s + ext)
}

func fail(logger *diag.Logger, comp string, err error, since *time.Time, fileID string) {
	code := string(diag.Classify(err))
	logger.ErrorWith(comp, code, err.Error(), since, fileID)
	diag.IncOp(comp, "error", "error")
	if code != string(diag.CodeUnknown) {
		diag.IncError(comp, code)
	}
}

func sanity(c Components) error {
	switch {
	case c.Reader == nil:
		return fmt.Errorf("%w: reader nil", contract.ErrInvalidInput)
	case c.Sanitizer == nil:
		return fmt.Errorf("%w: sanitizer nil", contract.ErrInvalidInput)
	case c.Formatter == nil:
		return fmt.Errorf("%w: formatter nil", contract.ErrInvalidInput)
	case c.Writer == nil:
		return fmt.Errorf("%w: writer nil", contract.ErrInvalidInput)
	}
	return nil
}
