package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigcrack/pkg/contract"
)

// UT-DIAG-01: 日志轮转写入
func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 30)
	require.NoError(t, w.WriteLine([]byte("first line that is very long")))
	require.NoError(t, w.WriteLine([]byte("second")))
	require.NoError(t, w.Close())
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(files), 2, "应存在轮转文件")
}

func TestRotatingFileRotateFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 10)
	for i := 0; i < 5; i++ {
		require.NoError(t, w.WriteLine([]byte("xxxxxxxxxxxxxxxxxx")))
	}
	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	hasCurrent, hasRotated := false, false
	for _, e := range ents {
		if e.Name() == "vigcrack-current.txt" {
			hasCurrent = true
		} else if strings.HasPrefix(e.Name(), "vigcrack-") && strings.HasSuffix(e.Name(), ".txt") {
			hasRotated = true
		}
	}
	assert.True(t, hasCurrent)
	assert.True(t, hasRotated)
	assert.Equal(t, filepath.Join(dir, "vigcrack-current.txt"), w.Path())
}

func TestRotatingFileDefaultsAndRotateNoOpen(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 0)
	assert.EqualValues(t, 10*1024*1024, w.maxBytes)
	require.NoError(t, w.WriteLine([]byte("a")))
	require.NoError(t, w.Close())
	// f==nil 时 rotate 退化为打开
	require.NoError(t, w.rotate())
	assert.NotNil(t, w.f)
	require.NoError(t, w.Close())
}

// UT-DIAG-02: 指标计数
func TestMetrics(t *testing.T) {
	before := testutil.ToFloat64(opTotal.WithLabelValues("ut", "score", "success"))
	IncOp("ut", "score", "success")
	IncOp("ut", "score", "success")
	assert.Equal(t, before+2, testutil.ToFloat64(opTotal.WithLabelValues("ut", "score", "success")))

	beforeErr := testutil.ToFloat64(errorTotal.WithLabelValues("ut", "detection"))
	IncError("ut", "detection")
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(errorTotal.WithLabelValues("ut", "detection")))

	ObserveDuration("ut", "score", 0.3)
	assert.Positive(t, testutil.CollectAndCount(opDuration))

	path := filepath.Join(t.TempDir(), "vigcrack.prom")
	require.NoError(t, WriteMetrics(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `vigcrack_op_total{comp="ut",result="success",stage="score"}`)
	assert.Contains(t, string(b), "vigcrack_op_duration_ms_bucket")
}

// UT-DIAG-03: 错误分类
func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{context.Canceled, CodeCancel},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), CodeCancel},
		{contract.ErrDegenerateInput, CodeDegenerate},
		{contract.WrapStage(contract.StageLocate, contract.ErrDegenerateInput), CodeDegenerate},
		{contract.WrapStage(contract.StageLocate, contract.ErrEstimation), CodeEstimation},
		{contract.WrapStage(contract.StageDetect, contract.ErrDetection), CodeDetection},
		{fmt.Errorf("%w: empty", contract.ErrInput), CodeInput},
		{contract.ErrInvalidInput, CodeInvariant},
		{&fs.PathError{Op: "open", Path: "/", Err: errors.New("x")}, CodeIO},
		{errors.New("other"), CodeUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.err), "%v", c.err)
	}
}

// UT-DIAG-04: Logger 事件结构与级别过滤
func TestLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("corr", "info", &buf)
	assert.Equal(t, "corr", l.CorrID())

	tm := l.StartWith("pipeline", "crack", "a.txt")
	tm.FinishKV("ok", 5, map[string]string{"key": "LEMON"})
	l.ErrorWith("pipeline", "detection", "boom", tm.Since(), "a.txt")
	l.DebugStage("cracker", "score", "filtered", "a.txt", time.Now(), nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "debug 事件应被过滤")
	var evs []Event
	for _, ln := range lines {
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(ln), &ev))
		evs = append(evs, ev)
	}
	assert.Equal(t, "start", evs[0].Stage)
	assert.Equal(t, "a.txt", evs[0].FileID)
	assert.Equal(t, "finish", evs[1].Stage)
	assert.EqualValues(t, 5, evs[1].Count)
	assert.Equal(t, "LEMON", evs[1].KV["key"])
	assert.Equal(t, "error", evs[2].Level)
	assert.Equal(t, "detection", evs[2].Code)
	assert.Equal(t, "corr", evs[2].CorrID)
}

func TestLoggerDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("c", "DEBUG", &buf)
	l.DebugStage("cracker", "locate", "ok", "f", time.Now(), map[string]string{"n": "3"})
	l.Start("x", "y").Finish("z", 0)
	l.Error("x", "unknown", "e", nil)
	l.InfoFinish("x", "done", time.Now(), 1)
	assert.Equal(t, 5, strings.Count(buf.String(), "\n"))

	buf.Reset()
	w := NewWriterLogger("c", "warn", &buf)
	w.Start("x", "y")
	assert.Empty(t, buf.String())
}

func TestLoggerWithSink(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger("corr", "info", dir)
	l.Start("comp", "msg").Finish("ok", 1)
	l.Error("comp", "code", "msg", nil)
	require.NoError(t, l.Close())
	b, err := os.ReadFile(filepath.Join(dir, "vigcrack-current.txt"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(b), "\n"))
}

func TestLoggerNilSafe(t *testing.T) {
	var l *Logger
	l.Error("x", "y", "z", nil)
	assert.Empty(t, l.CorrID())
	assert.NoError(t, l.Close())
	var tn *Timer
	tn.Finish("x", 0)
	assert.Nil(t, tn.Since())
	(&Timer{}).Finish("x", 0)
}

func TestLevels(t *testing.T) {
	assert.Equal(t, "warn", Warn.String())
	assert.Equal(t, "info", Level(12345).String())
	assert.Equal(t, Error, ParseLevel(" error "))
	assert.Equal(t, Info, ParseLevel("verbose"))
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel("Debug"))
	assert.False(t, ValidLevel("verbose"))
	assert.NotEmpty(t, NowUTC())
}

// UT-DIAG-05: 终端（非 TTY）关键节点输出
func TestTerminalNonTTYFlow(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	require.False(t, term.isTTY)
	term.RunStart(2, "auto")
	term.FileStart("docs/secret.txt")
	term.FileStage("score") // 非 TTY 不输出
	term.FileFinish(true, "LEMON", 5100*time.Millisecond)
	term.FileStart("docs/short.txt")
	term.FileFinish(false, "estimation", 20*time.Millisecond)
	term.RunFinish(false, 41300*time.Millisecond)

	out := sb.String()
	assert.NotContains(t, out, "\r")
	assert.Contains(t, out, "[run] 输入=2 | 语言=auto")
	assert.Contains(t, out, "[file] secret.txt")
	assert.Contains(t, out, "[done] secret.txt | LEMON | 用时 5.1s")
	assert.Contains(t, out, "[fail] short.txt | estimation | 用时 20ms")
	assert.Contains(t, out, "[fail] 全部完成 | 成功 1 | 失败 1 | 总用时 41.3s")
}

// UT-DIAG-06: 终端（TTY）节流与清尾
func TestTerminalTTYThrottleAndClear(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	term.isTTY = true
	term.RunStart(1, "english")
	term.FileStart("/a/b/c/longfilename.txt")

	term.FileStage("locate")
	first := sb.String()
	assert.Contains(t, first, "\r[file] longfilename.txt | 阶段 locate")
	term.FileStage("estimate")
	assert.Equal(t, first, sb.String(), "100ms 内应被节流")
	time.Sleep(120 * time.Millisecond)
	term.FileStage("score")
	third := sb.String()
	assert.Greater(t, len(third), len(first))

	term.FileFinish(false, "detection", 2200*time.Millisecond)
	final := sb.String()
	idx := strings.LastIndex(final, "[fail]")
	require.Positive(t, idx)
	seg := final[:idx]
	cr := strings.LastIndex(seg, "\r")
	require.GreaterOrEqual(t, cr, 0)
	assert.Contains(t, seg[cr+1:], " ", "回车后应以空格覆盖旧行")
}

type flakyWriter struct{ fail bool }

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.fail {
		w.fail = false
		return 0, fmt.Errorf("boom")
	}
	return len(p), nil
}

// UT-DIAG-07: 写失败降级为禁用态
func TestTerminalDisableOnWriteError(t *testing.T) {
	term := NewTerminal(&flakyWriter{fail: true}, true)
	term.RunStart(1, "x")
	assert.False(t, term.enabled)
	term.FileStart("a")
	term.FileStage("score")
	term.FileFinish(true, "K", 0)
	term.RunFinish(true, 0)

	inline := NewTerminal(&flakyWriter{fail: true}, true)
	inline.isTTY = true
	inline.FileStart("f.txt")
	inline.FileStage("score")
	assert.False(t, inline.enabled)
}

func TestTerminalMisc(t *testing.T) {
	t.Setenv("CI", "true")
	assert.False(t, IsTerminal(os.Stderr))
	assert.False(t, IsTerminal(&strings.Builder{}))
	assert.False(t, NewTerminal(nil, true).isTTY)

	var tn *Terminal
	tn.RunStart(1, "x")
	tn.FileStart("a")
	tn.FileStage("s")
	tn.FileFinish(true, "", 0)
	tn.RunFinish(true, 0)

	SetTerminal(nil)
	assert.Nil(t, GetTerminal())
	SetTerminal(NewTerminal(os.Stderr, false))
	assert.NotNil(t, GetTerminal())
	SetTerminal(nil)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "abcdefghi…", shortenBase("/x/y/abcdefghijklmnop.txt", 10))
	assert.Equal(t, "ñandú.txt", shortenBase("dir/ñandú.txt", 10))
	assert.Empty(t, shortenBase("x", 0))
	assert.Equal(t, "a b c", safe("a\nb\rc"))
	assert.Equal(t, "0ms", formatDur(0))
	assert.Equal(t, "1.5s", formatDur(1500*time.Millisecond))
}
