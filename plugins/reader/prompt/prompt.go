// Package prompt 以交互方式从终端读取一行密文。
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"vigcrack/pkg/contract"
)

// DefaultMessage: 默认提示语。
const DefaultMessage = "Enter the encrypted message: "

// FileID: 交互输入对应的 FileID。
const FileID contract.FileID = "prompt"

// Options: 交互 Reader 配置。
type Options struct {
	// Message 为空时使用 DefaultMessage。
	Message string `json:"message" yaml:"message"`
	// MaxBytes: 单行上限（字节），默认 1MiB。
	MaxBytes int `json:"max_bytes" yaml:"max_bytes"`
}

// Prompt 在 in 为终端时先向 out 打印提示，再读取一行。
// 非终端输入不打印提示（管道场景保持输出干净）。roots 被忽略。
type Prompt struct {
	msg      string
	maxBytes int
	in       io.Reader
	out      io.Writer
}

func New(opts *Options) *Prompt {
	p := &Prompt{msg: DefaultMessage, maxBytes: 1 << 20, in: os.Stdin, out: os.Stdout}
	if opts != nil {
		if opts.Message != "" {
			p.msg = opts.Message
		}
		if opts.MaxBytes > 0 {
			p.maxBytes = opts.MaxBytes
		}
	}
	return p
}

// WithIO 替换输入输出端（测试用）。
func (p *Prompt) WithIO(in io.Reader, out io.Writer) *Prompt {
	p.in, p.out = in, out
	return p
}

func (p *Prompt) interactive() bool {
	f, ok := p.in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Iterate 读取一行（不含换行符）并以 FileID "prompt" 交给 yield。
func (p *Prompt) Iterate(ctx context.Context, _ []string, yield func(contract.FileID, io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.interactive() {
		if _, err := io.WriteString(p.out, p.msg); err != nil {
			return fmt.Errorf("%w: write prompt: %w", contract.ErrInput, err)
		}
	}
	sc := bufio.NewScanner(p.in)
	sc.Buffer(make([]byte, 0, min(4096, p.maxBytes)), p.maxBytes)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("%w: %w", contract.ErrInput, err)
		}
		return fmt.Errorf("%w: no message entered", contract.ErrInput)
	}
	line := strings.TrimRight(sc.Text(), "\r")
	return yield(FileID, io.NopCloser(strings.NewReader(line)))
}
