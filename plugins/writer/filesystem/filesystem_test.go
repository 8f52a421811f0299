package filesystem

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigcrack/pkg/contract"
)

func noTmp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "tmp file not cleaned: %s", e.Name())
	}
}

// UT-WFS-01: 原子写入并替换已有文件
func TestWriteAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, w.Write(ctx, "in/secret.key.txt", bytes.NewBufferString("Suggested Passkey: KEY\n")))
	require.NoError(t, w.Write(ctx, "in/secret.key.txt", bytes.NewBufferString("Suggested Passkey: LEMON\n")))
	b, err := os.ReadFile(filepath.Join(dir, "secret.key.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Suggested Passkey: LEMON\n", string(b))
	noTmp(t, dir)
}

// UT-WFS-02: 非扁平非原子保留目录层级
func TestWriteNestedOverwrite(t *testing.T) {
	dir := t.TempDir()
	f, a := false, false
	w, err := New(&Options{OutputDir: dir, Flat: &f, Atomic: &a, PermFile: 0o600, PermDir: 0o700, BufSize: 8})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), "sub/out.json", strings.NewReader(`{"key":"LEMON"}`)))
	b, err := os.ReadFile(filepath.Join(dir, "sub", "out.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"LEMON"}`, string(b))
	if runtime.GOOS != "windows" {
		st, err := os.Stat(filepath.Join(dir, "sub", "out.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
	}
}

// UT-WFS-03: 越界路径
func TestMapPathInvalid(t *testing.T) {
	dir := t.TempDir()
	flat := false
	w, err := New(&Options{OutputDir: dir, Flat: &flat})
	require.NoError(t, err)
	abs := "/abs"
	if runtime.GOOS == "windows" {
		abs = `C:\abs`
	}
	for _, id := range []string{abs, "..", ".", "../bad", "a/../../bad"} {
		_, err := w.mapPath(contract.ArtifactID(id))
		assert.ErrorIs(t, err, contract.ErrInvalidInput, id)
	}
	err = w.Write(context.Background(), "../bad", strings.NewReader("x"))
	assert.ErrorIs(t, err, contract.ErrInvalidInput)

	fw, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	p, err := fw.mapPath("../../x/report.key.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.key.txt"), p)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
	_, err = New(&Options{OutputDir: "  "})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

func TestWriteCtxCancel(t *testing.T) {
	w, err := New(&Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Write(ctx, "a.txt", strings.NewReader("data")), context.Canceled)

	r := readerWithCtx(ctx, strings.NewReader("data"))
	_, err = r.Read(make([]byte, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

// UT-WFS-04: 拷贝失败不残留临时文件
func TestWriteAtomicCopyError(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	require.Error(t, w.Write(context.Background(), "a.txt", errReader{}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// UT-WFS-05: flat 模式下不同输入映射到同名文件时报错，不覆盖先写入的结果
func TestWriteFlatCollision(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, w.Write(ctx, "in/a/x.key.txt", strings.NewReader("LEMON\n")))
	err = w.Write(ctx, "in/b/x.key.txt", strings.NewReader("CIPHER\n"))
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
	b, err := os.ReadFile(filepath.Join(dir, "x.key.txt"))
	require.NoError(t, err)
	assert.Equal(t, "LEMON\n", string(b))

	// 保留层级时两者共存
	flat := false
	nw, err := New(&Options{OutputDir: dir, Flat: &flat})
	require.NoError(t, err)
	require.NoError(t, nw.Write(ctx, "in/a/x.key.txt", strings.NewReader("LEMON\n")))
	require.NoError(t, nw.Write(ctx, "in/b/x.key.txt", strings.NewReader("CIPHER\n")))
	_, err = os.Stat(filepath.Join(dir, "in", "b", "x.key.txt"))
	assert.NoError(t, err)
}
