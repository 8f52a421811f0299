package prompt

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigcrack/pkg/contract"
)

func TestPromptReadsOneLine(t *testing.T) {
	var out strings.Builder
	p := New(nil).WithIO(strings.NewReader("LXFOPV EFRNHR\r\nsecond line\n"), &out)
	var got string
	var gotID contract.FileID
	err := p.Iterate(context.Background(), []string{"ignored"}, func(id contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		b, err := io.ReadAll(rc)
		gotID, got = id, string(b)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, FileID, gotID)
	assert.Equal(t, "LXFOPV EFRNHR", got)
	// 非终端不打印提示
	assert.Empty(t, out.String())
}

func TestPromptEmptyInput(t *testing.T) {
	p := New(&Options{Message: "> "}).WithIO(strings.NewReader(""), io.Discard)
	err := p.Iterate(context.Background(), nil, func(contract.FileID, io.ReadCloser) error {
		t.Fatal("yield 不应被调用")
		return nil
	})
	assert.ErrorIs(t, err, contract.ErrInput)
	assert.Equal(t, "> ", p.msg)
}

func TestPromptLineTooLong(t *testing.T) {
	p := New(&Options{MaxBytes: 8}).WithIO(strings.NewReader(strings.Repeat("A", 64)+"\n"), io.Discard)
	err := p.Iterate(context.Background(), nil, func(contract.FileID, io.ReadCloser) error { return nil })
	assert.ErrorIs(t, err, contract.ErrInput)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}

func TestPromptCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(nil).WithIO(strings.NewReader("x\n"), io.Discard).Iterate(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, DefaultMessage, New(nil).msg)
}
