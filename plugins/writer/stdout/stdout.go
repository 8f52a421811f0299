// Package stdout 将报告按到达顺序写到标准输出。
package stdout

import (
	"context"
	"io"
	"os"
	"sync"

	"vigcrack/pkg/contract"
)

// Options: 预留，当前无配置项。
type Options struct{}

// Stdout 串行写出，id 仅用于满足 Writer 约束。
type Stdout struct {
	mu sync.Mutex
	w  io.Writer
}

func New(_ *Options) *Stdout { return &Stdout{w: os.Stdout} }

// NewWriter 写到任意 w（测试与嵌入场景）。
func NewWriter(w io.Writer) *Stdout { return &Stdout{w: w} }

var _ contract.Writer = (*Stdout)(nil)

func (s *Stdout) Write(ctx context.Context, _ contract.ArtifactID, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.Copy(s.w, r)
	return err
}
